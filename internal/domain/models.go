// Package domain defines the persistence models for users, plants, species,
// care actions, and plant messages. These types are mapped with GORM and form
// the core data layer of the plant-care application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// PotSize is the pot-size category of a plant. Larger pots hold moisture
// longer, so the category scales the watering interval.
type PotSize string

// Pot sizes, ordered smallest to largest.
const (
	PotTiny   PotSize = "TINY"
	PotSmall  PotSize = "SMALL"
	PotMedium PotSize = "MEDIUM"
	PotLarge  PotSize = "LARGE"
	PotXLarge PotSize = "XLARGE"
)

// Valid reports whether p is one of the known pot sizes.
func (p PotSize) Valid() bool {
	switch p {
	case PotTiny, PotSmall, PotMedium, PotLarge, PotXLarge:
		return true
	}
	return false
}

// Personality is a cosmetic tag on a plant controlling which template family
// is used for generated messages.
type Personality string

// Plant personalities.
const (
	PersonalityFriendly Personality = "FRIENDLY"
	PersonalityShy      Personality = "SHY"
	PersonalityDramatic Personality = "DRAMATIC"
	PersonalityWise     Personality = "WISE"
	PersonalityPlayful  Personality = "PLAYFUL"
)

// Valid reports whether p is one of the known personalities.
func (p Personality) Valid() bool {
	switch p {
	case PersonalityFriendly, PersonalityShy, PersonalityDramatic, PersonalityWise, PersonalityPlayful:
		return true
	}
	return false
}

// ActionType is the kind of care event recorded against a plant. Only
// ActionWatering has a side effect on the plant's schedule.
type ActionType string

// Care action types.
const (
	ActionWatering    ActionType = "WATERING"
	ActionFertilizing ActionType = "FERTILIZING"
	ActionRepotting   ActionType = "REPOTTING"
	ActionPruning     ActionType = "PRUNING"
	ActionMisting     ActionType = "MISTING"
	ActionRotating    ActionType = "ROTATING"
	ActionCleaning    ActionType = "CLEANING"
	ActionOther       ActionType = "OTHER"
)

// Valid reports whether a is one of the known action types.
func (a ActionType) Valid() bool {
	switch a {
	case ActionWatering, ActionFertilizing, ActionRepotting, ActionPruning,
		ActionMisting, ActionRotating, ActionCleaning, ActionOther:
		return true
	}
	return false
}

// MessageType classifies a generated plant message.
type MessageType string

// Message types.
const (
	MessageGreeting         MessageType = "GREETING"
	MessageWateringReminder MessageType = "WATERING_REMINDER"
	MessageWateringThanks   MessageType = "WATERING_THANKS"
	MessageMilestone        MessageType = "MILESTONE"
	MessageWeatherWarning   MessageType = "WEATHER_WARNING"
	MessageTip              MessageType = "TIP"
	MessageSOS              MessageType = "SOS"
)

// User represents a chat-platform account that owns plants. Users are
// resolved by the auth middleware from trusted identity headers.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - TelegramID: unique chat-platform identifier, also the notification
//     destination.
//   - NotificationsEnabled: opt-out switch for reminder delivery.
//   - Timezone / LanguageCode: user-local presentation settings.
type User struct {
	ID                   string         `json:"id"          gorm:"type:char(36);primaryKey"`
	TelegramID           int64          `json:"telegram_id" gorm:"not null;uniqueIndex"`
	Username             string         `json:"username"    gorm:"type:varchar(64)"`
	FirstName            string         `json:"first_name"  gorm:"type:varchar(128)"`
	LastName             string         `json:"last_name"   gorm:"type:varchar(128)"`
	LanguageCode         string         `json:"language_code" gorm:"type:varchar(8);not null;default:'en'"`
	Timezone             string         `json:"timezone"    gorm:"type:varchar(64);not null;default:'UTC'"`
	NotificationsEnabled bool           `json:"notifications_enabled" gorm:"not null;default:true"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Species is catalog reference data shared by many plants. It is read-only
// at request time; a plant's schedule derives from its base interval and
// the seasonal multipliers defined here.
type Species struct {
	ID                       string         `json:"id"          gorm:"type:char(36);primaryKey"`
	CommonName               string         `json:"common_name" gorm:"type:varchar(128);not null;index"`
	LatinName                string         `json:"latin_name"  gorm:"type:varchar(128);not null"`
	WateringFrequencyDays    int            `json:"watering_frequency_days" gorm:"not null"`
	WateringWinterMultiplier float64        `json:"watering_winter_multiplier" gorm:"not null;default:1"`
	WateringSummerMultiplier float64        `json:"watering_summer_multiplier" gorm:"not null;default:1"`
	LightRequirement         string         `json:"light_requirement" gorm:"type:varchar(32)"`
	CareLevel                string         `json:"care_level"  gorm:"type:varchar(16)"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
	DeletedAt                gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Species.
func (Species) TableName() string { return "species" }

// Plant is a user-owned entity representing one physical plant.
//
// NextWateringAt is always derived by the watering scheduler from the base
// interval, season, and pot size; it is never set directly by a request.
type Plant struct {
	ID                 string         `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID             string         `json:"user_id"   gorm:"type:char(36);not null;index:idx_user_plants"`
	SpeciesID          *string        `json:"species_id,omitempty" gorm:"type:char(36);index"`
	Nickname           string         `json:"nickname"  gorm:"type:varchar(128);not null"`
	CustomSpecies      *string        `json:"custom_species,omitempty" gorm:"type:varchar(128)"`
	Location           *string        `json:"location,omitempty" gorm:"type:varchar(128)"`
	PotSize            PotSize        `json:"pot_size"  gorm:"type:varchar(16);not null;default:'MEDIUM'"`
	Personality        Personality    `json:"personality" gorm:"type:varchar(16);not null;default:'FRIENDLY'"`
	CustomWateringDays *int           `json:"custom_watering_days,omitempty"`
	AcquiredAt         time.Time      `json:"acquired_at"`
	LastWateredAt      *time.Time     `json:"last_watered_at,omitempty"`
	NextWateringAt     *time.Time     `json:"next_watering_at,omitempty" gorm:"index"`
	IsArchived         bool           `json:"is_archived" gorm:"not null;default:false;index"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-"         gorm:"index"`

	// Species is the optional catalog entry this plant is an instance of.
	Species *Species `json:"species,omitempty" gorm:"foreignKey:SpeciesID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	// User is the owning account. Plants are cascade-deleted with it.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Plant.
func (Plant) TableName() string { return "plants" }

// CareAction is an append-only log entry recording a care event against a
// plant. Only watering actions advance the plant's schedule.
type CareAction struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	PlantID    string         `json:"plant_id"    gorm:"type:char(36);not null;index:idx_plant_actions,priority:1"`
	UserID     string         `json:"user_id"     gorm:"type:char(36);not null;index"`
	ActionType ActionType     `json:"action_type" gorm:"type:varchar(16);not null"`
	Notes      *string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"  gorm:"index:idx_plant_actions,priority:2"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	// Plant is the subject of the action; the log is cascade-deleted with it.
	Plant Plant `json:"-" gorm:"foreignKey:PlantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CareAction.
func (CareAction) TableName() string { return "care_actions" }

// PlantMessage is generated text addressed to the plant's owner, written by
// the message generator and never by direct user input.
type PlantMessage struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	PlantID     string         `json:"plant_id"     gorm:"type:char(36);not null;index:idx_plant_msgs,priority:1"`
	MessageType MessageType    `json:"message_type" gorm:"type:varchar(32);not null"`
	Content     string         `json:"content"      gorm:"type:text;not null"`
	IsRead      bool           `json:"is_read"      gorm:"not null;default:false;index"`
	CreatedAt   time.Time      `json:"created_at"   gorm:"index:idx_plant_msgs,priority:2"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	// Plant is the sender persona; messages are cascade-deleted with it.
	Plant Plant `json:"-" gorm:"foreignKey:PlantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PlantMessage.
func (PlantMessage) TableName() string { return "plant_messages" }
