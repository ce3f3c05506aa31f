// Package plantmsg generates the text plants "write" to their owners.
// Templates are selected by personality, message type, and (for reminders)
// the watering status; the exact wording is cosmetic, the selection key is
// the contract.
package plantmsg

import (
	"math/rand"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/watering"
)

// pick selects a variant index; a seam so tests can force a choice.
var pick = func(n int) int { return rand.Intn(n) }

// reminderTemplates maps personality -> status -> variants.
var reminderTemplates = map[domain.Personality]map[watering.StatusName][]string{
	domain.PersonalityFriendly: {
		watering.StatusSoon:     {"Hey! I could use a drink soon 💧", "Just a heads up, my soil is getting dry!"},
		watering.StatusOverdue:  {"Um... I'm pretty thirsty over here 🥺", "My leaves are drooping a little. Water, please?"},
		watering.StatusCritical: {"Help! I really, really need water right now! 🆘", "I'm wilting! Please don't forget me!"},
	},
	domain.PersonalityShy: {
		watering.StatusSoon:     {"Sorry to bother you... I might need water soon.", "If it's not too much trouble... a little water?"},
		watering.StatusOverdue:  {"I didn't want to ask, but... I'm quite thirsty.", "Excuse me... my soil has been dry for a while."},
		watering.StatusCritical: {"I'm so sorry to insist, but I truly need water...", "Please... I can't hold on much longer..."},
	},
	domain.PersonalityDramatic: {
		watering.StatusSoon:     {"The drought approaches. I feel it in my roots.", "Darling, my soil is turning to DUST."},
		watering.StatusOverdue:  {"I am PARCHED. This is a tragedy in the making!", "Days without water. DAYS. How could you?"},
		watering.StatusCritical: {"THIS IS THE END. Tell my cuttings I loved them.", "I am but a husk of my former self. WATER. NOW."},
	},
	domain.PersonalityWise: {
		watering.StatusSoon:     {"A timely drink keeps the roots content. Soon, please.", "The observant gardener waters before the wilt."},
		watering.StatusOverdue:  {"Patience has limits, even for a plant. I am overdue.", "Dry soil teaches no lessons. Water me, friend."},
		watering.StatusCritical: {"Even the oldest oak falls without rain. Act now.", "This neglect will be a lesson for us both. Water, urgently."},
	},
	domain.PersonalityPlayful: {
		watering.StatusSoon:     {"Psst! Water o'clock is coming up! ⏰", "Race you to the watering can! 🏃"},
		watering.StatusOverdue:  {"Heyyy, you forgot me! Tag, you're it — with water!", "My soil called. It wants a refill! 😛"},
		watering.StatusCritical: {"Okay okay NOT joking anymore, I need water NOW!", "Emergency! Send water! This is not a drill! 🚨"},
	},
}

// simpleTemplates maps personality -> message type -> variants, for the
// message types that do not vary by status.
var simpleTemplates = map[domain.Personality]map[domain.MessageType][]string{
	domain.PersonalityFriendly: {
		domain.MessageGreeting:       {"So happy to be home! Let's grow together 🌱", "Hi! I already love my new spot!"},
		domain.MessageWateringThanks: {"Ahh, that hit the spot! Thank you! 💚", "Yum! You're the best plant parent!"},
		domain.MessageMilestone:      {"Look how far we've come together!", "Another milestone! High-leaf! 🙌"},
	},
	domain.PersonalityShy: {
		domain.MessageGreeting:       {"H-hello... I hope I'm not a burden...", "Thank you for taking me in. I'll try to grow well."},
		domain.MessageWateringThanks: {"Oh... thank you. That was very kind.", "I... appreciate the water. Really."},
		domain.MessageMilestone:      {"I grew a little... I hope that's okay.", "Um... I think I did something good?"},
	},
	domain.PersonalityDramatic: {
		domain.MessageGreeting:       {"At last, a stage worthy of my foliage!", "I have ARRIVED. Let the growing commence!"},
		domain.MessageWateringThanks: {"SALVATION! I am REBORN!", "You have saved me from certain doom. This time."},
		domain.MessageMilestone:      {"Witness my MAGNIFICENT progress!", "History will remember this growth spurt."},
	},
	domain.PersonalityWise: {
		domain.MessageGreeting:       {"A new home is a new chapter. Let us begin.", "Where I am planted, there I shall flourish."},
		domain.MessageWateringThanks: {"Water given freely returns as growth. Thank you.", "A good deed, well timed. My roots are grateful."},
		domain.MessageMilestone:      {"Growth is slow, but it is certain.", "Every leaf is a small victory over time."},
	},
	domain.PersonalityPlayful: {
		domain.MessageGreeting:       {"New house, who dis? 😄 Let's have fun!", "Yay, roomies! I promise to be the fun one!"},
		domain.MessageWateringThanks: {"Glug glug glug — delicious! Thanks! 🎉", "Best. Drink. Ever. Ten out of ten!"},
		domain.MessageMilestone:      {"Leveled up! 🎮 New leaf unlocked!", "Ding! Achievement earned: growing like a champ!"},
	},
}

// fallbacks used when a (personality, type) pair has no dedicated variants.
var fallbackTemplates = map[domain.MessageType][]string{
	domain.MessageGreeting:         {"Happy to be here! 🌱"},
	domain.MessageWateringReminder: {"Time to water me, please! 💧"},
	domain.MessageWateringThanks:   {"Thanks for the water! 💚"},
	domain.MessageMilestone:        {"I've been growing nicely!"},
	domain.MessageWeatherWarning:   {"The forecast looks rough — maybe move me away from the window?"},
	domain.MessageTip:              {"A little fresh air and indirect light go a long way."},
	domain.MessageSOS:              {"Something feels wrong. Please check on me!"},
}

// Generate returns message text for the given personality, message type, and
// watering status. The status only influences watering reminders; other
// types ignore it. The returned text is never empty.
func Generate(p domain.Personality, t domain.MessageType, status watering.StatusName) string {
	if t == domain.MessageWateringReminder {
		if byStatus, ok := reminderTemplates[p]; ok {
			if variants, ok := byStatus[status]; ok && len(variants) > 0 {
				return variants[pick(len(variants))]
			}
			// "ok" status reminders fall back to the soon wording.
			if variants, ok := byStatus[watering.StatusSoon]; ok && len(variants) > 0 {
				return variants[pick(len(variants))]
			}
		}
	} else if byType, ok := simpleTemplates[p]; ok {
		if variants, ok := byType[t]; ok && len(variants) > 0 {
			return variants[pick(len(variants))]
		}
	}

	variants := fallbackTemplates[t]
	if len(variants) == 0 {
		return "🌿"
	}
	return variants[pick(len(variants))]
}

// Reminder selects a watering reminder for the personality and status.
func Reminder(p domain.Personality, status watering.StatusName) string {
	return Generate(p, domain.MessageWateringReminder, status)
}

// Thanks selects a post-watering thank-you message.
func Thanks(p domain.Personality) string {
	return Generate(p, domain.MessageWateringThanks, "")
}

// Greeting selects the message a freshly created plant sends its owner.
func Greeting(p domain.Personality) string {
	return Generate(p, domain.MessageGreeting, "")
}
