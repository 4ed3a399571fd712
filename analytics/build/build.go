package build

import (
	"github.com/golang/glog"
	"github.com/prebid/aolhtb/analytics"
	"github.com/prebid/aolhtb/analytics/filesystem"
	"github.com/prebid/aolhtb/config"
)

// New returns a Runner over every analytics module enabled in the config. With none enabled the
// Runner is a no-op.
func New(cfg *config.Analytics) analytics.Runner {
	modules := make(enabledAnalytics, 0)
	if len(cfg.File.Filename) > 0 {
		if mod, err := filesystem.NewFileLogger(cfg.File.Filename); err == nil {
			modules = append(modules, mod)
		} else {
			glog.Fatalf("Could not initialize FileLogger for file %v :%v", cfg.File.Filename, err)
		}
	}
	return modules
}

// Collection of all the correctly configured analytics modules - implements the Runner interface
type enabledAnalytics []analytics.Module

func (ea enabledAnalytics) LogSlotEvent(se *analytics.SlotEvent) {
	for _, module := range ea {
		module.LogSlotEvent(se)
	}
}

func (ea enabledAnalytics) LogAuctionObject(ao *analytics.AuctionObject) {
	for _, module := range ea {
		module.LogAuctionObject(ao)
	}
}

// Shutdown - correctly shutdown all analytics modules and wait for them to finish
func (ea enabledAnalytics) Shutdown() {
	for _, module := range ea {
		module.Shutdown()
	}
}
