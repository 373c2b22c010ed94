package blog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/multierr"
)

// DateLayout is the MM-DD-YYYY form post dates are written in.
const DateLayout = "01-02-2006"

var (
	// ErrEmptyGitHub is returned for a blank GitHub username.
	ErrEmptyGitHub = errors.New("GitHub username cannot be empty")
	// ErrAuthorDigits is returned for an author name containing digits.
	ErrAuthorDigits = errors.New("author name should not contain numbers")
	// ErrBadDate is returned for a date not in MM-DD-YYYY form.
	ErrBadDate = errors.New("incorrect date format, use MM-DD-YYYY")
	// ErrUnknownBackground is returned for a background that is not available.
	ErrUnknownBackground = errors.New("unknown background")
	// ErrNoBackgrounds is returned when there is nothing to choose from.
	ErrNoBackgrounds = errors.New("no background images found")
)

// Post is one blog entry as stored in posts/<id>.json.
type Post struct {
	ID         int    `json:"blogId"`
	Background string `json:"background"`
	GitHub     string `json:"github"`
	Author     string `json:"author"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Date       string `json:"date"`
}

// Validate checks every constrained field of the post.
func (p *Post) Validate() error {
	return multierr.Combine(
		ValidateGitHub(p.GitHub),
		ValidateAuthor(p.Author),
		ValidateDate(p.Date),
	)
}

// ValidateGitHub rejects a blank username.
func ValidateGitHub(github string) error {
	if strings.TrimSpace(github) == "" {
		return ErrEmptyGitHub
	}

	return nil
}

// ValidateAuthor rejects names containing digits.
func ValidateAuthor(author string) error {
	if strings.ContainsFunc(author, unicode.IsDigit) {
		return fmt.Errorf("%q: %w", author, ErrAuthorDigits)
	}

	return nil
}

// ValidateDate checks the MM-DD-YYYY form, including the calendar.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%q: %w", date, ErrBadDate)
	}

	return nil
}

// ResolveBackground returns the background named by choice, which is either
// a name from available or its 1-based position.
func ResolveBackground(choice string, available []string) (string, error) {
	if len(available) == 0 {
		return "", ErrNoBackgrounds
	}

	choice = strings.TrimSpace(choice)

	if slices.Contains(available, choice) {
		return choice, nil
	}

	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(available) {
		return available[n-1], nil
	}

	return "", fmt.Errorf("%q: %w", choice, ErrUnknownBackground)
}

// NextID returns the id following the largest one in ids, or 1.
func NextID(ids []int) int {
	if len(ids) == 0 {
		return 1
	}

	return slices.Max(ids) + 1
}
