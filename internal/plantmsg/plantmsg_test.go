package plantmsg

import (
	"testing"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/watering"
)

var allPersonalities = []domain.Personality{
	domain.PersonalityFriendly,
	domain.PersonalityShy,
	domain.PersonalityDramatic,
	domain.PersonalityWise,
	domain.PersonalityPlayful,
}

func forceFirstVariant(t *testing.T) {
	t.Helper()
	orig := pick
	pick = func(int) int { return 0 }
	t.Cleanup(func() { pick = orig })
}

func TestReminder_CoversEveryPersonalityAndStatus(t *testing.T) {
	statuses := []watering.StatusName{
		watering.StatusSoon, watering.StatusOverdue, watering.StatusCritical,
	}
	for _, p := range allPersonalities {
		for _, s := range statuses {
			if got := Reminder(p, s); got == "" {
				t.Errorf("Reminder(%v, %v) returned empty text", p, s)
			}
		}
	}
}

func TestReminder_StatusSelectsDifferentTemplates(t *testing.T) {
	forceFirstVariant(t)

	soon := Reminder(domain.PersonalityDramatic, watering.StatusSoon)
	critical := Reminder(domain.PersonalityDramatic, watering.StatusCritical)
	if soon == critical {
		t.Fatalf("soon and critical reminders identical: %q", soon)
	}
}

func TestReminder_PersonalitySelectsDifferentTemplates(t *testing.T) {
	forceFirstVariant(t)

	shy := Reminder(domain.PersonalityShy, watering.StatusOverdue)
	dramatic := Reminder(domain.PersonalityDramatic, watering.StatusOverdue)
	if shy == dramatic {
		t.Fatalf("shy and dramatic reminders identical: %q", shy)
	}
}

func TestReminder_OKStatusFallsBackToSoon(t *testing.T) {
	forceFirstVariant(t)

	ok := Reminder(domain.PersonalityWise, watering.StatusOK)
	soon := Reminder(domain.PersonalityWise, watering.StatusSoon)
	if ok != soon {
		t.Fatalf("ok-status reminder %q; want soon wording %q", ok, soon)
	}
}

func TestThanksAndGreeting_NonEmptyPerPersonality(t *testing.T) {
	for _, p := range allPersonalities {
		if Thanks(p) == "" {
			t.Errorf("Thanks(%v) empty", p)
		}
		if Greeting(p) == "" {
			t.Errorf("Greeting(%v) empty", p)
		}
	}
}

func TestGenerate_UnknownPersonalityUsesFallback(t *testing.T) {
	forceFirstVariant(t)

	got := Generate(domain.Personality("GRUMPY"), domain.MessageWateringThanks, "")
	if got == "" {
		t.Fatal("fallback thanks message empty")
	}
}

func TestGenerate_AllMessageTypesTotal(t *testing.T) {
	types := []domain.MessageType{
		domain.MessageGreeting, domain.MessageWateringReminder,
		domain.MessageWateringThanks, domain.MessageMilestone,
		domain.MessageWeatherWarning, domain.MessageTip, domain.MessageSOS,
	}
	for _, p := range allPersonalities {
		for _, mt := range types {
			if got := Generate(p, mt, watering.StatusSoon); got == "" {
				t.Errorf("Generate(%v, %v) empty", p, mt)
			}
		}
	}
}
