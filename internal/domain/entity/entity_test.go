package entity

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_JSON(t *testing.T) {
	ts := NewTime(time.Date(2024, 3, 1, 10, 20, 30, 123456789, time.FixedZone("x", 3600)))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T09:20:30.123Z"`, string(data))

	var back Time
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))
}

func TestEpoch(t *testing.T) {
	assert.Equal(t, "1970-01-01T00:00:00.000Z", Epoch.String())
}

func TestRecord_Validate(t *testing.T) {
	base := Base{ID: "r1", UpdatedAt: Now()}

	tests := []struct {
		name    string
		record  Record
		wantErr error
	}{
		{
			name:   "valid",
			record: Record{Base: base, Title: "t", ChannelURL: "https://youtube.com/@x", Platform: PlatformYouTube},
		},
		{
			name:    "missing id",
			record:  Record{Base: Base{UpdatedAt: Now()}, Title: "t", ChannelURL: "u", Platform: PlatformTwitch},
			wantErr: ErrMissingField,
		},
		{
			name:    "missing title",
			record:  Record{Base: base, ChannelURL: "u", Platform: PlatformTwitch},
			wantErr: ErrMissingField,
		},
		{
			name:    "unknown platform",
			record:  Record{Base: base, Title: "t", ChannelURL: "u", Platform: "vimeo"},
			wantErr: ErrInvalidPlatform,
		},
		{
			name:    "bad tombstone flag",
			record:  Record{Base: Base{ID: "r1", UpdatedAt: Now(), Deleted: 2}, Title: "t", ChannelURL: "u", Platform: PlatformTwitch},
			wantErr: ErrInvalidDeleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestChannelBookmark_Validate(t *testing.T) {
	b := ChannelBookmark{Base: Base{ID: "b1", UpdatedAt: Now()}, ChannelID: "c", Platform: PlatformTwitch}
	assert.ErrorIs(t, b.Validate(), ErrMissingField)

	b.ChannelName = "name"
	assert.NoError(t, b.Validate())
}

func TestFolder_Validate(t *testing.T) {
	assert.ErrorIs(t, Folder{Base: Base{ID: "f1"}, Name: "n"}.Validate(), ErrMissingField)
	assert.NoError(t, Folder{Base: Base{ID: "f1", UpdatedAt: Now()}, Name: "n"}.Validate())
}

func TestKindPath(t *testing.T) {
	for _, k := range Kinds {
		got, err := KindFromPath(k.Path())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := KindFromPath("/videos")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSortByUpdatedAt(t *testing.T) {
	t0 := Now()
	items := []Folder{
		{Base: Base{ID: "c", UpdatedAt: NewTime(t0.Add(2 * time.Second))}},
		{Base: Base{ID: "b", UpdatedAt: t0}},
		{Base: Base{ID: "a", UpdatedAt: t0}},
	}
	SortByUpdatedAt(items)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestTombstone(t *testing.T) {
	at := Now()
	rec := Tombstone(Record{Base: Base{ID: "r1"}, Title: "t"}, at)
	assert.True(t, rec.IsDeleted())
	assert.True(t, at.Equal(rec.UpdatedAt.Time))
	assert.Equal(t, "t", rec.Title)
}

func TestParseChannelURL(t *testing.T) {
	tests := []struct {
		url      string
		platform Platform
		id       string
	}{
		{"https://www.youtube.com/@SomeHandle", PlatformYouTube, "@SomeHandle"},
		{"youtube.com/channel/UC123/videos", PlatformYouTube, "UC123"},
		{"https://m.youtube.com/c/name", PlatformYouTube, "name"},
		{"https://www.twitch.tv/Streamer_1", PlatformTwitch, "streamer_1"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			ch, err := ParseChannelURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.platform, ch.Platform)
			assert.Equal(t, tt.id, ch.ID)
		})
	}

	for _, bad := range []string{"", "https://vimeo.com/x", "https://youtube.com/watch?v=1", "https://twitch.tv/directory"} {
		_, err := ParseChannelURL(bad)
		assert.ErrorIs(t, err, ErrUnrecognizedChannel, bad)
	}
}

func TestTouch(t *testing.T) {
	at := Now()
	f := Touch(Folder{Base: Base{Deleted: 1}, Name: "n"}, at, func() string { return "generated" })
	assert.Equal(t, "generated", f.ID)
	assert.False(t, f.IsDeleted())
	assert.True(t, at.Equal(f.UpdatedAt.Time))

	kept := Touch(Folder{Base: Base{ID: "f1"}}, at, func() string { return "generated" })
	assert.Equal(t, "f1", kept.ID)
}
