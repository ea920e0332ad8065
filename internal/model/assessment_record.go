package model

import "time"

// AssessmentRecord 幼儿某次发展评估记录
// 六项评分范围 0-10，身高 0-200 cm，体重 0-100 kg；缺省为 0
// swagger:model AssessmentRecord
type AssessmentRecord struct {
	BaseModel
	ChildID              uint       `gorm:"index;not null" json:"childId"`
	ReportDate           *time.Time `gorm:"type:date;index" json:"reportDate"`
	ActiveSpeech         float64    `gorm:"default:0" json:"activeSpeech"`
	PlayActivity         float64    `gorm:"default:0" json:"playActivity"`
	ArtActivity          float64    `gorm:"default:0" json:"artActivity"`
	ConstructiveActivity float64    `gorm:"default:0" json:"constructiveActivity"`
	SensoryDevelopment   float64    `gorm:"default:0" json:"sensoryDevelopment"`
	MovementSkills       float64    `gorm:"default:0" json:"movementSkills"`
	Height               float64    `gorm:"default:0" json:"height"`
	Weight               float64    `gorm:"default:0" json:"weight"`
	Notes                string     `gorm:"type:text" json:"notes"`
}

func (AssessmentRecord) TableName() string {
	return "assessment_records"
}

// Metric 按指标标识取值，未知指标返回 0
func (r *AssessmentRecord) Metric(m MetricID) float64 {
	switch m {
	case MetricActiveSpeech:
		return r.ActiveSpeech
	case MetricPlayActivity:
		return r.PlayActivity
	case MetricArtActivity:
		return r.ArtActivity
	case MetricConstructiveActivity:
		return r.ConstructiveActivity
	case MetricSensoryDevelopment:
		return r.SensoryDevelopment
	case MetricMovementSkills:
		return r.MovementSkills
	case MetricHeight:
		return r.Height
	case MetricWeight:
		return r.Weight
	}
	return 0
}

func (r *AssessmentRecord) SetMetric(m MetricID, v float64) {
	switch m {
	case MetricActiveSpeech:
		r.ActiveSpeech = v
	case MetricPlayActivity:
		r.PlayActivity = v
	case MetricArtActivity:
		r.ArtActivity = v
	case MetricConstructiveActivity:
		r.ConstructiveActivity = v
	case MetricSensoryDevelopment:
		r.SensoryDevelopment = v
	case MetricMovementSkills:
		r.MovementSkills = v
	case MetricHeight:
		r.Height = v
	case MetricWeight:
		r.Weight = v
	}
}
