package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&StudioInfo{},
	&Quest{},
	&QuestVersion{},
	&QuestAnnotation{},
	&ExportRecord{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// StudioInfo contains guild information about the instance
type StudioInfo struct {
	gorm.Model
	GuildName        string `json:"guildName" gorm:"size:127"`
	GuildDescription string `json:"guildDescription" gorm:"size:255"`
	GuildWebsite     string `json:"guildURL" gorm:"size:255"`
}

func (*StudioInfo) TableName() string {
	return "studio_infos"
}

////////////////////////
// AUTHORING MODELS
////////////////////////

// Quest is the main model for an authored quest. The difficulty check
// is the only column-level constraint; reward, description, and
// deadline are stored exactly as given.
type Quest struct {
	gorm.Model
	Title       string `json:"title" gorm:"size:255"`
	Difficulty  string `json:"difficulty" gorm:"size:32;check:difficulty IN ('Easy','Medium','Hard','Epic')"`
	Reward      int    `json:"reward"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" gorm:"size:64"`
}

func (*Quest) TableName() string {
	return "quests"
}

// QuestVersion is one append-only snapshot of a quest's versioned
// fields. Rows are only ever inserted. Deadline is not versioned.
type QuestVersion struct {
	gorm.Model
	QuestID     uint   `json:"questId" gorm:"index:idx_questversion_quest_id"`
	Quest       Quest  `gorm:"constraint:OnUpdate:CASCADE;foreignkey:QuestID"`
	Title       string `json:"title" gorm:"size:255"`
	Difficulty  string `json:"difficulty" gorm:"size:32"`
	Reward      int    `json:"reward"`
	Description string `json:"description"`
}

func (*QuestVersion) TableName() string {
	return "quest_versions"
}

// QuestAnnotation is a point marker on a quest's map
type QuestAnnotation struct {
	gorm.Model
	QuestID uint    `json:"questId" gorm:"not null;index:idx_questannotation_quest_id"`
	Quest   Quest   `gorm:"constraint:OnUpdate:CASCADE;foreignkey:QuestID"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Kind    string  `json:"kind" gorm:"size:32"`
	Label   string  `json:"label" gorm:"size:255"`
}

func (*QuestAnnotation) TableName() string {
	return "quest_annotations"
}

// ExportRecord tracks a completed document export, including the flat
// snapshot handed to the template engine
type ExportRecord struct {
	gorm.Model
	QuestID    uint           `json:"questId" gorm:"index:idx_exportrecord_quest_id"`
	Quest      Quest          `gorm:"constraint:OnUpdate:CASCADE;foreignkey:QuestID"`
	Format     string         `json:"format" gorm:"size:16"`
	OutputPath string         `json:"outputPath" gorm:"size:511"`
	Payload    datatypes.JSON `json:"payload"`
}

func (*ExportRecord) TableName() string {
	return "export_records"
}
