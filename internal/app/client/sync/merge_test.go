package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tidemark/internal/domain/entity"
)

func folderAt(id, name string, at time.Time, deleted int) entity.Folder {
	return entity.Folder{Base: entity.Base{ID: id, UpdatedAt: entity.NewTime(at), Deleted: deleted}, Name: name}
}

func TestMerge(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		local   []entity.Folder
		remote  []entity.Folder
		pending Pending
		want    map[string]string
	}{
		{
			name:   "remote overwrites local",
			local:  []entity.Folder{folderAt("a", "local", t0, 0)},
			remote: []entity.Folder{folderAt("a", "remote", t0.Add(time.Second), 0)},
			want:   map[string]string{"a": "remote"},
		},
		{
			name:   "tombstone removes",
			local:  []entity.Folder{folderAt("a", "local", t0, 0), folderAt("b", "keep", t0, 0)},
			remote: []entity.Folder{folderAt("a", "local", t0.Add(time.Second), 1)},
			want:   map[string]string{"b": "keep"},
		},
		{
			name:  "latest write in delta wins",
			local: nil,
			remote: []entity.Folder{
				folderAt("a", "second", t0.Add(2*time.Second), 0),
				folderAt("a", "first", t0.Add(time.Second), 0),
			},
			want: map[string]string{"a": "second"},
		},
		{
			name:  "delete then recreate in one delta",
			local: []entity.Folder{folderAt("a", "old", t0, 0)},
			remote: []entity.Folder{
				folderAt("a", "new", t0.Add(2*time.Second), 0),
				folderAt("a", "old", t0.Add(time.Second), 1),
			},
			want: map[string]string{"a": "new"},
		},
		{
			name:   "local only entities survive",
			local:  []entity.Folder{folderAt("a", "mine", t0, 0)},
			remote: []entity.Folder{folderAt("b", "theirs", t0, 0)},
			want:   map[string]string{"a": "mine", "b": "theirs"},
		},
		{
			name:   "newer local copy is kept",
			local:  []entity.Folder{folderAt("a", "local", t0.Add(time.Second), 0)},
			remote: []entity.Folder{folderAt("a", "remote", t0, 0)},
			want:   map[string]string{"a": "local"},
		},
		{
			name:   "older tombstone does not remove newer local copy",
			local:  []entity.Folder{folderAt("a", "local", t0.Add(time.Second), 0)},
			remote: []entity.Folder{folderAt("a", "local", t0, 1)},
			want:   map[string]string{"a": "local"},
		},
		{
			name:    "pending id is left alone",
			local:   []entity.Folder{folderAt("a", "local", t0, 0)},
			remote:  []entity.Folder{folderAt("a", "remote", t0.Add(time.Second), 0), folderAt("b", "theirs", t0, 0)},
			pending: Pending{entity.KindFolder: {"a": true}},
			want:    map[string]string{"a": "local", "b": "theirs"},
		},
		{
			name:    "pending delete is not resurrected",
			local:   nil,
			remote:  []entity.Folder{folderAt("a", "remote", t0, 0)},
			pending: Pending{entity.KindFolder: {"a": true}},
			want:    map[string]string{},
		},
		{
			name:    "pending id of another kind does not apply",
			local:   nil,
			remote:  []entity.Folder{folderAt("a", "remote", t0, 0)},
			pending: Pending{entity.KindRecord: {"a": true}},
			want:    map[string]string{"a": "remote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(entity.Snapshot{Folders: tt.local}, entity.Delta{Folders: tt.remote}, tt.pending)

			names := make(map[string]string, len(got.Folders))
			for _, f := range got.Folders {
				names[f.ID] = f.Name
			}
			assert.Equal(t, tt.want, names)
			assert.Len(t, got.Folders, len(tt.want))
		})
	}
}

func TestMerge_CollectionsIndependent(t *testing.T) {
	t0 := time.Now()
	local := entity.Snapshot{
		Records: []entity.Record{{Base: entity.Base{ID: "r1", UpdatedAt: entity.NewTime(t0)}, Title: "t"}},
	}
	delta := entity.Delta{
		ChannelBookmarks: []entity.ChannelBookmark{{Base: entity.Base{ID: "b1", UpdatedAt: entity.NewTime(t0)}, ChannelID: "c"}},
	}

	got := Merge(local, delta, nil)
	assert.Len(t, got.Records, 1)
	assert.Empty(t, got.Folders)
	assert.Len(t, got.ChannelBookmarks, 1)
}
