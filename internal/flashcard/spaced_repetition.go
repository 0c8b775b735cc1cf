package flashcard

import (
	"math"
	"time"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/models"
)

var (
	ErrInvalidQuality    = errors.New("flashcard: quality must be between 0 and 5")
	ErrInvalidEaseFactor = errors.New("flashcard: ease factor must be positive")
)

const (
	MinQuality  = 0
	MaxQuality  = 5
	PassQuality = 3
)

// Progress is the scheduling state a review starts from.
type Progress struct {
	IntervalDays int
	Repetition   int
	EaseFactor   float64
}

// Review is the scheduling state after a review.
type Review struct {
	Progress
	DueAt time.Time
}

// ComputeNextReview applies one SM-2 step. quality: 0=blackout .. 5=perfect.
// The ease factor adjusts on every grade and never drops below 1.3; a failed
// grade (< 3) restarts the repetition sequence at a one day interval.
func ComputeNextReview(current Progress, quality int, now time.Time) (Review, error) {
	if quality < MinQuality || quality > MaxQuality {
		return Review{}, errors.NewValidationError("quality", "must be between 0 and 5", ErrInvalidQuality)
	}
	if current.EaseFactor <= 0 {
		return Review{}, errors.NewValidationError("ease_factor", "must be positive", ErrInvalidEaseFactor)
	}

	miss := float64(MaxQuality - quality)
	ef := current.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	if ef < models.MinEaseFactor {
		ef = models.MinEaseFactor
	}

	next := Progress{EaseFactor: ef}
	if quality < PassQuality {
		next.Repetition = 0
		next.IntervalDays = 1
	} else {
		next.Repetition = current.Repetition + 1
		switch next.Repetition {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(current.IntervalDays) * ef))
			if next.IntervalDays < 1 {
				next.IntervalDays = 1
			}
		}
	}

	return Review{
		Progress: next,
		DueAt:    now.UTC().AddDate(0, 0, next.IntervalDays),
	}, nil
}

// ApplyReview returns card rescheduled for the given quality.
func ApplyReview(card models.Flashcard, quality int, now time.Time) (models.Flashcard, error) {
	review, err := ComputeNextReview(Progress{
		IntervalDays: card.IntervalDays,
		Repetition:   card.Repetition,
		EaseFactor:   card.EaseFactor,
	}, quality, now)
	if err != nil {
		return card, err
	}

	card.IntervalDays = review.IntervalDays
	card.Repetition = review.Repetition
	card.EaseFactor = review.EaseFactor
	card.DueAt = review.DueAt
	return card, nil
}
