package webhooks

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReleasePayload(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	p := NewReleasePayload(ReleaseInfo{
		Name:           "CoolMod",
		VersionNumber:  "1.2.3",
		Description:    "does cool things",
		PackageURL:     "http://mods.example.test/packages/alice/coolmod/",
		ThumbnailURL:   "http://mods.example.test/media/coolmod.png",
		OwnerName:      "Alice",
		ProviderName:   "mods.example.test",
		ProviderURL:    "http://mods.example.test/",
		TotalDownloads: "1337",
		Timestamp:      ts,
	})

	require.Len(t, p.Embeds, 1)
	e := p.Embeds[0]
	assert.Equal(t, "CoolMod v1.2.3", e.Title)
	assert.Equal(t, "rich", e.Type)
	assert.Equal(t, ReleaseColor, e.Color)
	assert.Equal(t, "2025-03-14T09:26:53Z", e.Timestamp)
	assert.Equal(t, 256, e.Thumbnail.Width)
	assert.Equal(t, 256, e.Thumbnail.Height)
	assert.Equal(t, "Alice", e.Author.Name)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "Total downloads across versions", e.Fields[0].Name)
	assert.Equal(t, "1337", e.Fields[0].Value)
}

func TestPayloadJSONShape(t *testing.T) {
	p := NewReleasePayload(ReleaseInfo{Name: "Mod", VersionNumber: "1.0.0", Timestamp: time.Now()})
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	embeds, ok := decoded["embeds"].([]interface{})
	require.True(t, ok)
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]interface{})
	assert.Equal(t, "Mod v1.0.0", embed["title"])
	assert.Equal(t, float64(ReleaseColor), embed["color"])
	assert.Contains(t, embed, "thumbnail")
	assert.Contains(t, embed, "provider")
	assert.Contains(t, embed, "fields")
}
