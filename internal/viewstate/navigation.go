package viewstate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scenaview/internal/apperr"
	"github.com/starford/scenaview/internal/models"
)

// DefaultMaxFrames bounds frame input for sequences without a frame count.
const DefaultMaxFrames = 5678

var digitsRe = regexp.MustCompile(`^\d+$`)

// MaxFrames returns the highest selectable frame of seq.
func MaxFrames(seq models.Sequence) int {
	if seq.TotalFrames > 0 {
		return seq.TotalFrames
	}
	return DefaultMaxFrames
}

// ValidateFrame checks that frame lies in [1, maxFrames].
func ValidateFrame(frame, maxFrames int) error {
	if err := validation.Validate(frame,
		validation.Required,
		validation.Min(1),
		validation.Max(maxFrames),
	); err != nil {
		return fmt.Errorf("%w: frame: %w", apperr.ErrInvalidInput, err)
	}
	return nil
}

// ParseFrame parses and validates user frame input. Only plain decimal
// digits are accepted.
func ParseFrame(raw string, maxFrames int) (int, error) {
	raw = strings.TrimSpace(raw)
	if err := validation.Validate(raw,
		validation.Required,
		validation.Match(digitsRe),
	); err != nil {
		return 0, fmt.Errorf("%w: frame: %w", apperr.ErrInvalidInput, err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: frame: %w", apperr.ErrInvalidInput, err)
	}
	if err := ValidateFrame(n, maxFrames); err != nil {
		return 0, err
	}
	return n, nil
}

// CanNavigate reports whether stepping delta frames from current stays in
// [1, maxFrames]. Without a current frame there is nothing to step from.
func CanNavigate(current, delta, maxFrames int) bool {
	if current <= 0 {
		return false
	}
	next := current + delta
	return next >= 1 && next <= maxFrames
}

// FormatCount renders n with comma thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
