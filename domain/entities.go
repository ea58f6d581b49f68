package domain

import (
	"github.com/fundwit/go-commons/types"
)

// EntityType is the closed set of entity kinds the workflow engine tracks.
type EntityType string

const (
	EntityTypeProgram         EntityType = "program"
	EntityTypeEpisode         EntityType = "episode"
	EntityTypeMusicSubmission EntityType = "music_submission"
)

var AllEntityTypes = []EntityType{EntityTypeProgram, EntityTypeEpisode, EntityTypeMusicSubmission}

func IsKnownEntityType(t EntityType) bool {
	for _, v := range AllEntityTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Program struct {
	ID   types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name string   `json:"name"`

	CurrentState string          `json:"currentState"`
	CreatorID    types.ID        `json:"creatorId"`
	SupervisorID types.ID        `json:"supervisorId"`
	CreateTime   types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type Episode struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProgramID types.ID `json:"programId"`
	Title     string   `json:"title"`
	SeqNum    int      `json:"seqNum"`

	CurrentState string          `json:"currentState"`
	CreatorID    types.ID        `json:"creatorId"`
	SupervisorID types.ID        `json:"supervisorId"`
	CreateTime   types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type MusicSubmission struct {
	ID     types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`

	CurrentState string          `json:"currentState"`
	CreatorID    types.ID        `json:"creatorId"`
	CreateTime   types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}
