// Package university serves campus support resources and checks student
// credentials against the loaded university directory.
package university

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/stringutil"
)

// Authentication failures. All of them match domerrors.ErrUnauthorized.
var (
	ErrUnknownUniversity = fmt.Errorf("%w: university not found", domerrors.ErrUnauthorized)
	ErrUnknownStudent    = fmt.Errorf("%w: invalid student id", domerrors.ErrUnauthorized)
	ErrWrongPassword     = fmt.Errorf("%w: invalid password", domerrors.ErrUnauthorized)
)

// Resource is one campus support service.
type Resource struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	URL         string `json:"url,omitempty"`
	Hours       string `json:"hours,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Student holds a student's display name and bcrypt password hash.
type Student struct {
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
}

// Entry is one university as stored in the reference data.
type Entry struct {
	Resources []Resource         `json:"resources"`
	Students  map[string]Student `json:"students,omitempty"`
}

// RawDirectory is the decoded form: university name → entry.
type RawDirectory map[string]Entry

// Profile is returned on successful student authentication.
type Profile struct {
	University string `json:"university"`
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
}

// Match is the result of a resource lookup.
type Match struct {
	University string     `json:"university"`
	Resources  []Resource `json:"resources"`
}

// Directory is an immutable university index.
type Directory struct {
	entries map[string]Entry
	names   []string

	// missHash stands in for the stored hash when the university or the
	// student is unknown, at the highest cost the directory uses.
	missHash func() []byte
	compare  func(hash, password []byte) error
}

// NewDirectory validates raw and copies it into an immutable index.
func NewDirectory(raw RawDirectory) (*Directory, error) {
	d := &Directory{
		entries: make(map[string]Entry, len(raw)),
		compare: bcrypt.CompareHashAndPassword,
	}
	cost := bcrypt.MinCost

	for name, entry := range raw {
		if strings.TrimSpace(name) == "" {
			return nil, domerrors.NewValidationError("university", "name must not be blank")
		}
		for i, r := range entry.Resources {
			if strings.TrimSpace(r.Name) == "" {
				return nil, domerrors.NewValidationError("resources",
					fmt.Sprintf("%s: resource %d has no name", name, i))
			}
		}
		for id, s := range entry.Students {
			if strings.TrimSpace(id) == "" || s.PasswordHash == "" {
				return nil, domerrors.NewValidationError("students",
					fmt.Sprintf("%s: student entries need an id and a password hash", name))
			}
			if c, err := bcrypt.Cost([]byte(s.PasswordHash)); err == nil {
				cost = max(cost, c)
			}
		}
		d.entries[name] = Entry{
			Resources: slices.Clone(entry.Resources),
			Students:  maps.Clone(entry.Students),
		}
	}

	d.names = slices.Sorted(maps.Keys(d.entries))
	d.missHash = sync.OnceValue(func() []byte {
		hash, _ := bcrypt.GenerateFromPassword([]byte("calmmate-unknown-student"), cost)
		return hash
	})
	return d, nil
}

// Names returns the sorted university names.
func (d *Directory) Names() []string {
	return slices.Clone(d.names)
}

// Size returns the number of universities.
func (d *Directory) Size() int {
	return len(d.names)
}

// Resources finds a university by exact name, then case-insensitively,
// then by substring in either direction over the sorted names.
func (d *Directory) Resources(name string) (Match, error) {
	name = stringutil.CollapseSpace(name)
	if err := domerrors.Required("university_name", name); err != nil {
		return Match{}, err
	}

	canonical, ok := d.find(name)
	if !ok {
		for _, n := range d.names {
			if stringutil.ContainsEitherFold(n, name) {
				canonical, ok = n, true
				break
			}
		}
	}
	if !ok {
		return Match{}, fmt.Errorf("university %q: %w", name, domerrors.ErrNotFound)
	}

	resources := slices.Clone(d.entries[canonical].Resources)
	if resources == nil {
		resources = []Resource{}
	}
	return Match{University: canonical, Resources: resources}, nil
}

// Authenticate checks a student's password against the stored bcrypt hash.
// University names match exactly or case-insensitively, never by substring.
// Every failure runs one bcrypt comparison, so an unknown university or
// student answers as slowly as a wrong password.
func (d *Directory) Authenticate(ctx context.Context, universityName, studentID, password string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	universityName = stringutil.CollapseSpace(universityName)
	studentID = strings.TrimSpace(studentID)
	if err := errors.Join(
		domerrors.Required("university_name", universityName),
		domerrors.Required("student_id", studentID),
		domerrors.Required("password", password),
	); err != nil {
		return Profile{}, err
	}

	canonical, ok := d.find(universityName)
	if !ok {
		_ = d.compare(d.missHash(), []byte(password))
		return Profile{}, ErrUnknownUniversity
	}
	student, ok := d.entries[canonical].Students[studentID]
	if !ok {
		_ = d.compare(d.missHash(), []byte(password))
		return Profile{}, ErrUnknownStudent
	}
	if err := d.compare([]byte(student.PasswordHash), []byte(password)); err != nil {
		return Profile{}, ErrWrongPassword
	}

	return Profile{University: canonical, StudentID: studentID, Name: student.Name}, nil
}

func (d *Directory) find(name string) (string, bool) {
	if _, ok := d.entries[name]; ok {
		return name, true
	}
	for _, n := range d.names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
