// Package refdata loads the emergency contact table and the university
// directory from embedded defaults, local files, or an R2 bucket.
package refdata

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/calmmate-go/internal/contacts"
	"github.com/garyellow/calmmate-go/internal/university"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Fetcher downloads an object by key. *r2client.Client satisfies it.
type Fetcher interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Source selects where one table comes from. RemoteKey wins over Path when
// a Fetcher is configured. Both empty means the embedded default.
type Source struct {
	Path      string
	RemoteKey string
}

// Options configures Load.
type Options struct {
	Locations    Source
	Universities Source
	Remote       Fetcher
	Logger       *slog.Logger
}

// Data is the loaded reference data.
type Data struct {
	Contacts         *contacts.Table
	Universities     *university.Directory
	LocationOrigin   string
	UniversityOrigin string
	LoadedAt         time.Time
}

// Load reads both tables concurrently. A remote source that fails falls
// back to Path or the embedded default. A local file that fails is fatal.
func Load(ctx context.Context, opts Options) (*Data, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	data := &Data{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, origin, err := load(ctx, log, Locations, opts.Locations, opts.Remote, DecodeLocations)
		if err != nil {
			return fmt.Errorf("locations: %w", err)
		}
		data.Contacts, data.LocationOrigin = table, origin
		return nil
	})
	g.Go(func() error {
		dir, origin, err := load(ctx, log, Universities, opts.Universities, opts.Remote, DecodeUniversities)
		if err != nil {
			return fmt.Errorf("universities: %w", err)
		}
		data.Universities, data.UniversityOrigin = dir, origin
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	data.LoadedAt = time.Now()

	log.InfoContext(ctx, "Reference data loaded",
		"locations", data.LocationOrigin,
		"contacts", data.Contacts.Size(),
		"universities", data.UniversityOrigin,
		"university_count", data.Universities.Size())
	return data, nil
}

func load[T any](
	ctx context.Context,
	log *slog.Logger,
	kind Kind,
	src Source,
	remote Fetcher,
	decode func(string, io.Reader) (T, error),
) (T, string, error) {
	if src.RemoteKey != "" && remote != nil {
		v, err := loadRemote(ctx, src.RemoteKey, remote, decode)
		if err == nil {
			return v, "r2:" + src.RemoteKey, nil
		}
		if ctx.Err() != nil {
			var zero T
			return zero, "", ctx.Err()
		}
		log.WarnContext(ctx, "Remote reference data unavailable, using local copy",
			"kind", kind,
			"key", src.RemoteKey,
			"error", err)
	}

	if src.Path != "" {
		v, err := loadFile(src.Path, decode)
		return v, "file:" + src.Path, err
	}

	v, err := Default(kind, decode)
	return v, "embedded", err
}

func loadRemote[T any](ctx context.Context, key string, remote Fetcher, decode func(string, io.Reader) (T, error)) (T, error) {
	body, _, err := remote.Download(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	defer body.Close()
	return decode(key, body)
}

func loadFile[T any](path string, decode func(string, io.Reader) (T, error)) (T, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return decode(path, f)
}

// Default decodes the embedded default document of kind.
func Default[T any](kind Kind, decode func(string, io.Reader) (T, error)) (T, error) {
	name := "defaults/" + string(kind) + ".json"
	body, err := defaultsFS.ReadFile(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(name, bytes.NewReader(body))
}

// DefaultLocations returns the embedded location table.
func DefaultLocations() (*contacts.Table, error) {
	return Default(Locations, DecodeLocations)
}

// DefaultUniversities returns the embedded university directory.
func DefaultUniversities() (*university.Directory, error) {
	return Default(Universities, DecodeUniversities)
}

// LocationsFromFile decodes a location table from a local file.
func LocationsFromFile(path string) (*contacts.Table, error) {
	return loadFile(path, DecodeLocations)
}

// ValidateFile checks a document of kind without keeping the result.
func ValidateFile(kind Kind, path string) error {
	switch kind {
	case Locations:
		_, err := loadFile(path, DecodeLocations)
		return err
	case Universities:
		_, err := loadFile(path, DecodeUniversities)
		return err
	default:
		return errors.New("unknown reference data kind: " + string(kind))
	}
}
