package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/router"
	"github.com/prebid/aolhtb/server"
)

// Rev holds binary revision string
// Set manually at build time using:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD` -X main.Version=1.0.0"
var Rev string

// Version is the release this binary was built from.
var Version string

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	if err := serve(Version, Rev, cfg); err != nil {
		glog.Exitf("aolhtb failed: %v", err)
	}
}

const configFileName = "aolhtb"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(version, revision string, cfg *config.Configuration) error {
	info, err := config.LoadBidderInfoFromDisk(cfg.BidderInfoPath)
	if err != nil {
		return err
	}

	r, err := router.New(cfg, info, version, revision)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	corsRouter := router.SupportCORS(r)
	return server.Listen(cfg, router.NoCache{Handler: corsRouter}, router.Admin(version, revision, info), r.MetricsEngine)
}
