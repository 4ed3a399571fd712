package aolhtb

import (
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/errortypes"
)

const mobileHost = "hb.nexage.com"

var regionHosts = map[config.Region]string{
	config.RegionEU:   "adserver-eu.adtech.advertising.com",
	config.RegionNA:   "adserver-us.adtech.advertising.com",
	config.RegionAsia: "adserver-as.adtech.advertising.com",
}

// Resolve returns the OneDisplay ad server host for a region. There is no default host.
func Resolve(region config.Region) (string, error) {
	host, ok := regionHosts[region]
	if !ok {
		return "", &errortypes.UnknownRegion{Region: string(region)}
	}
	return host, nil
}

// MobileHost is the OneMobile bid host. It does not depend on region.
func MobileHost() string {
	return mobileHost
}
