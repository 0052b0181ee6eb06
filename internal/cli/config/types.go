// Package config provides configuration management for the cardsnap CLI.
// Configuration merges defaults, an optional cardsnap.yaml, CARDSNAP_*
// environment variables, and command-line flags, in increasing
// precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Timezone is the IANA zone results are formatted in.
	Timezone string `koanf:"timezone"`
	// SiteURL is the base used for card canonical links.
	SiteURL string `koanf:"site_url"`
	// RasterizerURL is the HTML-to-PNG service endpoint; empty disables
	// snapshot rendering.
	RasterizerURL string `koanf:"rasterizer_url"`
	// SnapshotWidth is the raster width for PNG snapshots.
	SnapshotWidth int `koanf:"snapshot_width"`
	// CardsDir is where the serve and digest commands look for card
	// and result JSON pairs.
	CardsDir string `koanf:"cards_dir"`
	// Port is the preview server port.
	Port int `koanf:"port"`

	IncludeTitle   bool `koanf:"include_title"`
	IncludeButtons bool `koanf:"include_buttons"`
	Verbose        bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultTimezone      = "UTC"
	DefaultSiteURL       = "http://localhost:3000"
	DefaultSnapshotWidth = 400
	DefaultCardsDir      = "cards"
	DefaultPort          = 8455
)
