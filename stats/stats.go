package stats

import (
	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/persistence"
	"greenroom/session"
)

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

type EntityStatsQuery struct {
	EntityType domain.EntityType `json:"entityType" form:"entityType" binding:"required"`
}

type StatsManagerTraits interface {
	CountByState(query *EntityStatsQuery, sec *session.Context) ([]StateCount, error)
}

// StatsManager answers the dashboard's "how many entities sit in each state"
// question straight from the entity tables.
type StatsManager struct {
	dataSource *persistence.DataSourceManager
}

func NewStatsManager(ds *persistence.DataSourceManager) *StatsManager {
	return &StatsManager{dataSource: ds}
}

func (m *StatsManager) CountByState(query *EntityStatsQuery, sec *session.Context) ([]StateCount, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	var table string
	switch query.EntityType {
	case domain.EntityTypeProgram:
		table = "programs"
	case domain.EntityTypeEpisode:
		table = "episodes"
	case domain.EntityTypeMusicSubmission:
		table = "music_submissions"
	default:
		return nil, bizerror.ErrUnknownEntityType
	}

	counts := []StateCount{}
	if err := m.dataSource.GormDB().Table(table).
		Select("current_state AS state, COUNT(*) AS count").
		Group("current_state").Order("count DESC").Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
