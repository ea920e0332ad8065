// 预热发展评估缓存
//
// 读取全部班级幼儿的评估记录并写入 progress.cache_backend 指定的缓存，
// 适用于 redis 缓存在部署或批量导入数据之后。
//
// 用法: go run scripts/warm_progress.go [-year 2024] [-clear]

package main

import (
	"context"
	"flag"
	"kindergarten_backend/internal/config"
	"kindergarten_backend/internal/repository"
	"kindergarten_backend/internal/service"
	"kindergarten_backend/internal/util"
	"kindergarten_backend/pkg/database"
	"kindergarten_backend/pkg/logger"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

func main() {
	year := flag.Int("year", time.Now().Year(), "打印该年份的全园平均值")
	clearCache := flag.Bool("clear", false, "预热前清空缓存")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var rdb *redis.Client
	if cfg.Progress.CacheBackend == util.CacheBackendRedis {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("Redis 连接失败: %v", err)
		}
		defer rdb.Close()
	}

	cache, err := service.NewProgressCache(&cfg.Progress, rdb)
	if err != nil {
		log.Fatalf("创建缓存失败: %v", err)
	}

	ctx := context.Background()
	if *clearCache {
		cache.Clear(ctx)
	}

	progress := service.NewProgressService(repository.NewProgressRecordRepository(db), cache, nil, &cfg.Progress)

	start := time.Now()
	series, err := progress.GetOrgProgress(ctx, *year)
	if err != nil {
		log.Fatalf("预热失败: %v", err)
	}
	log.Printf("预热完成，用时 %s", time.Since(start).Round(time.Millisecond))

	series = service.RoundSeries(series)
	for _, s := range series.Series {
		log.Printf("%d %-22s %v %v", *year, s.MetricID, series.Labels, s.Points)
	}
}
