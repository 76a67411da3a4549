package db

import "gorm.io/gorm"

type Repositories struct {
	Profiles      *ProfileRepository
	DailyLogs     *DailyLogRepository
	Pillars       *PillarRepository
	Consultations *ConsultationRepository
	Scores        *ScoreRepository
	Notifications *NotificationRepository
	Knowledge     *KnowledgeRepository
	Reports       *ReportRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:      NewProfileRepository(database),
		DailyLogs:     NewDailyLogRepository(database),
		Pillars:       NewPillarRepository(database),
		Consultations: NewConsultationRepository(database),
		Scores:        NewScoreRepository(database),
		Notifications: NewNotificationRepository(database),
		Knowledge:     NewKnowledgeRepository(database),
		Reports:       NewReportRepository(database),
	}
}
