// Package webhooks builds release-announcement payloads and hands them
// to a delivery transport. Delivery itself (retries, timeouts, failure
// handling) is the transport's concern and never propagates back into
// the write that triggered the announcement.
package webhooks

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ReleaseColor is the accent color of release embeds.
const ReleaseColor = 4474879

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Provider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Author struct {
	Name string `json:"name"`
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Embed struct {
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Timestamp   string    `json:"timestamp"`
	Color       int       `json:"color"`
	Thumbnail   Thumbnail `json:"thumbnail"`
	Provider    Provider  `json:"provider"`
	Author      Author    `json:"author"`
	Fields      []Field   `json:"fields"`
}

type Payload struct {
	Embeds []Embed `json:"embeds"`
}

// ReleaseInfo carries everything needed to announce a new version.
type ReleaseInfo struct {
	Name           string
	VersionNumber  string
	Description    string
	PackageURL     string
	ThumbnailURL   string
	OwnerName      string
	ProviderName   string
	ProviderURL    string
	TotalDownloads string
	Timestamp      time.Time
}

// NewReleasePayload builds the announcement payload for a new version.
func NewReleasePayload(info ReleaseInfo) *Payload {
	return &Payload{
		Embeds: []Embed{{
			Title:       info.Name + " v" + info.VersionNumber,
			Type:        "rich",
			Description: info.Description,
			URL:         info.PackageURL,
			Timestamp:   info.Timestamp.UTC().Format(time.RFC3339),
			Color:       ReleaseColor,
			Thumbnail: Thumbnail{
				URL:    info.ThumbnailURL,
				Width:  256,
				Height: 256,
			},
			Provider: Provider{
				Name: info.ProviderName,
				URL:  info.ProviderURL,
			},
			Author: Author{
				Name: info.OwnerName,
			},
			Fields: []Field{{
				Name:  "Total downloads across versions",
				Value: info.TotalDownloads,
			}},
		}},
	}
}

// Dispatcher is the delivery transport boundary.
type Dispatcher interface {
	Dispatch(url string, payload *Payload)
}

// LogDispatcher logs the handoff instead of delivering; used when no
// transport is configured.
type LogDispatcher struct {
	Log *logrus.Logger
}

func (d *LogDispatcher) Dispatch(url string, payload *Payload) {
	if len(payload.Embeds) == 0 {
		return
	}
	d.Log.WithFields(logrus.Fields{
		"url":   url,
		"title": payload.Embeds[0].Title,
	}).Info("webhook payload handed off")
}
