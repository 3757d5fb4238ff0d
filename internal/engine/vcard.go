package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-lifeweeks/internal/config"
)

// ErrNoBirthday is returned when no card carries a complete birth date.
var ErrNoBirthday = errors.New(config.ErrNoBirthday)

// BirthRecord is the birth date found in a vCard, with the card's display name.
type BirthRecord struct {
	Name        string
	DateOfBirth time.Time
}

// ReadBirthDate returns the first card of the stream whose BDAY has a year.
// Malformed cards are skipped so that one bad entry does not hide the others.
func ReadBirthDate(r io.Reader) (BirthRecord, error) {
	decoder := vcard.NewDecoder(r)
	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return BirthRecord{}, ErrNoBirthday
		}
		if err != nil {
			slog.Warn(config.ErrVCardParse,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}
		// Year-less forms such as --01-02 cannot anchor a life grid.
		birth, err := ParseDate(bday.Value)
		if err != nil {
			continue
		}

		name := ""
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		}
		return BirthRecord{Name: name, DateOfBirth: birth}, nil
	}
}

// Importer reads a birth date from a local vCard file or a remote address book.
type Importer struct {
	Fetcher VCardFetcher
}

// Import opens source (a path or an http(s) URL) and extracts the birth date.
func (i *Importer) Import(ctx context.Context, source string) (BirthRecord, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return BirthRecord{}, errors.New(config.ErrSourceEmpty)
	}

	slog.Info(config.MsgImportStart,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeySource, source,
	)

	reader, err := i.open(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return BirthRecord{}, ctx.Err()
		}
		return BirthRecord{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	rec, err := ReadBirthDate(reader)
	if err != nil {
		return BirthRecord{}, err
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyName, rec.Name,
	)
	return rec, nil
}

func (i *Importer) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == config.SchemeHTTP || u.Scheme == config.SchemeHTTPS) {
		if i.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return i.Fetcher.Fetch(ctx, source)
	}
	return os.Open(source)
}
