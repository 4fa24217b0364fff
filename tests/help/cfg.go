package help

import (
	"time"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/host"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

func Cfg() *config.App {
	c := &config.App{
		Listen: "127.0.0.1:0",
		Settings: config.Settings{
			Enabled:         true,
			InactiveTimeout: 30 * time.Second,
			CheckInterval:   time.Hour, // scans are driven explicitly in tests
			ExcludePinned:   true,
			ExcludeAudible:  true,
			MinActiveTabs:   0,
		},
	}
	c.Adjust()
	return c
}

func FloorCfg(floor int) *config.App {
	c := Cfg()
	c.Settings.MinActiveTabs = floor
	return c
}

func DisabledCfg() *config.App {
	c := Cfg()
	c.Settings.Enabled = false
	return c
}

// Browser returns a registry pre-populated with a typical window: one focused
// tab, one pinned, one audible, one internal page and a few plain ones.
func Browser() *host.Registry {
	r := host.NewRegistry()
	r.Upsert(model.Tab{ID: 1, Active: true, URL: "https://mail.example.com", Title: "Inbox"})
	r.Upsert(model.Tab{ID: 2, Pinned: true, URL: "https://chat.example.com", Title: "Chat"})
	r.Upsert(model.Tab{ID: 3, Audible: true, URL: "https://music.example.com", Title: "Radio"})
	r.Upsert(model.Tab{ID: 4, URL: "about:config", Title: "Preferences"})
	r.Upsert(model.Tab{ID: 5, URL: "https://news.example.com", Title: "News"})
	r.Upsert(model.Tab{ID: 6, URL: "https://docs.example.com", Title: "Docs"})
	return r
}
