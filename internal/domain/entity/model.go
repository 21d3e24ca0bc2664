package entity

import (
	"fmt"
	"slices"
	"strings"
)

type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTwitch  Platform = "twitch"
)

func (p Platform) Valid() bool {
	return p == PlatformYouTube || p == PlatformTwitch
}

// Kind names one of the three synchronizable collections.
type Kind string

const (
	KindRecord          Kind = "record"
	KindFolder          Kind = "folder"
	KindChannelBookmark Kind = "channel_bookmark"
)

var Kinds = []Kind{KindRecord, KindFolder, KindChannelBookmark}

// Path returns the HTTP collection path used by the remote service and the peer.
func (k Kind) Path() string {
	switch k {
	case KindRecord:
		return "/records"
	case KindFolder:
		return "/folders"
	case KindChannelBookmark:
		return "/channel-bookmarks"
	}
	return ""
}

func KindFromPath(path string) (Kind, error) {
	path = "/" + strings.Trim(path, "/")
	for _, k := range Kinds {
		if k.Path() == path {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, path)
}

// Entity is implemented by every synchronizable type.
type Entity interface {
	GetID() string
	GetUpdatedAt() Time
	IsDeleted() bool
	Kind() Kind
	Validate() error
}

// Base carries the fields shared by all collections.
type Base struct {
	ID        string `json:"id" doc:"Caller-chosen identifier, stable across the entity lifetime"`
	UpdatedAt Time   `json:"updated_at" doc:"Last modification time, the merge authority"`
	Deleted   int    `json:"deleted" required:"false" enum:"0,1" doc:"Tombstone flag"`
}

func (b Base) GetID() string      { return b.ID }
func (b Base) GetUpdatedAt() Time { return b.UpdatedAt }
func (b Base) IsDeleted() bool    { return b.Deleted == 1 }

func (b Base) validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if b.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: updated_at", ErrMissingField)
	}
	if b.Deleted != 0 && b.Deleted != 1 {
		return ErrInvalidDeleted
	}
	return nil
}

type Record struct {
	_ struct{} `json:"-" additionalProperties:"true"`
	Base
	Timestamp  string   `json:"timestamp" required:"false" doc:"Position inside the video"`
	LiveTime   string   `json:"live_time" required:"false" doc:"Wall clock time when recorded during a live stream"`
	Title      string   `json:"title"`
	Topic      string   `json:"topic" required:"false"`
	ChannelURL string   `json:"channel_url"`
	Platform   Platform `json:"platform" enum:"youtube,twitch"`
	FolderID   *string  `json:"folder_id" required:"false" nullable:"true"`
	SortOrder  int      `json:"sort_order" required:"false"`
}

func (Record) Kind() Kind { return KindRecord }

func (r Record) Validate() error {
	if err := r.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if strings.TrimSpace(r.ChannelURL) == "" {
		return fmt.Errorf("%w: channel_url", ErrMissingField)
	}
	return validatePlatform(r.Platform)
}

type Folder struct {
	_ struct{} `json:"-" additionalProperties:"true"`
	Base
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order" required:"false"`
}

func (Folder) Kind() Kind { return KindFolder }

func (f Folder) Validate() error {
	if err := f.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	return nil
}

type ChannelBookmark struct {
	_ struct{} `json:"-" additionalProperties:"true"`
	Base
	ChannelID   string   `json:"channel_id"`
	ChannelName string   `json:"channel_name"`
	Platform    Platform `json:"platform" enum:"youtube,twitch"`
	Notes       string   `json:"notes" required:"false"`
	SortOrder   int      `json:"sort_order" required:"false"`
}

func (ChannelBookmark) Kind() Kind { return KindChannelBookmark }

func (c ChannelBookmark) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ChannelID) == "" {
		return fmt.Errorf("%w: channel_id", ErrMissingField)
	}
	if strings.TrimSpace(c.ChannelName) == "" {
		return fmt.Errorf("%w: channel_name", ErrMissingField)
	}
	return validatePlatform(c.Platform)
}

func validatePlatform(p Platform) error {
	if p == "" {
		return fmt.Errorf("%w: platform", ErrMissingField)
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlatform, p)
	}
	return nil
}

// Delta is the response of a pull: every entity changed after the cursor.
type Delta struct {
	Records          []Record          `json:"records"`
	Folders          []Folder          `json:"folders"`
	ChannelBookmarks []ChannelBookmark `json:"channel_bookmarks"`
	SyncedAt         Time              `json:"synced_at"`
}

// Empty reports whether the delta carries no entity at all.
func (d Delta) Empty() bool {
	return len(d.Records) == 0 && len(d.Folders) == 0 && len(d.ChannelBookmarks) == 0
}

// SortByUpdatedAt orders a collection ascending by updated_at, ties broken by id.
func SortByUpdatedAt[T Entity](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := a.GetUpdatedAt().Compare(b.GetUpdatedAt().Time); c != 0 {
			return c
		}
		return strings.Compare(a.GetID(), b.GetID())
	})
}

// Tombstone returns a copy of e marked deleted at the given time.
func Tombstone[T Entity](e T, at Time) T {
	return withBase(e, func(b *Base) {
		b.Deleted, b.UpdatedAt = 1, at
	})
}

// Touch returns a live copy of e stamped with at. An empty id is replaced by newID.
func Touch[T Entity](e T, at Time, newID func() string) T {
	return withBase(e, func(b *Base) {
		if b.ID == "" {
			b.ID = newID()
		}
		b.Deleted, b.UpdatedAt = 0, at
	})
}

func withBase[T Entity](e T, fn func(*Base)) T {
	switch v := any(e).(type) {
	case Record:
		fn(&v.Base)
		return any(v).(T)
	case Folder:
		fn(&v.Base)
		return any(v).(T)
	case ChannelBookmark:
		fn(&v.Base)
		return any(v).(T)
	}
	return e
}

// Snapshot is the full local copy of the three collections.
type Snapshot struct {
	Records          []Record
	Folders          []Folder
	ChannelBookmarks []ChannelBookmark
}
