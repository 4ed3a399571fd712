package config

import (
	"fmt"
	"os"

	"github.com/blang/semver"
	"gopkg.in/yaml.v2"
)

// BidderName is the file name, without extension, of the adapter's bidder info.
const BidderName = "aolhtb"

// BidderInfo is the static profile of the adapter. Everything here is fixed per release; the
// publisher facing knobs live in Partner.
type BidderInfo struct {
	PartnerID     string          `yaml:"partnerId"`
	Namespace     string          `yaml:"namespace"`
	StatsID       string          `yaml:"statsId"`
	Version       string          `yaml:"version"`
	TargetingType string          `yaml:"targetingType"`
	Maintainer    *MaintainerInfo `yaml:"maintainer"`
	// EnabledAnalytics is the default event gating. Partner.EnabledAnalytics overrides it.
	EnabledAnalytics EnabledAnalytics `yaml:"enabledAnalytics"`
	TargetingKeys    TargetingKeys    `yaml:"targetingKeys"`
	// LineItemType is the default render registration strategy. Partner.LineItemType overrides it.
	LineItemType LineItemType `yaml:"lineItemType"`

	version semver.Version
}

// MaintainerInfo specifies the support email address for the adapter.
type MaintainerInfo struct {
	Email string `yaml:"email"`
}

// TargetingKeys names the keys the adapter writes into slot targeting.
type TargetingKeys struct {
	OM string `yaml:"om"`
	PM string `yaml:"pm"`
	ID string `yaml:"id"`
}

// SemVer returns the parsed profile version.
func (info *BidderInfo) SemVer() semver.Version {
	return info.version
}

// LoadBidderInfoFromDisk reads the adapter profile from path/aolhtb.yaml.
func LoadBidderInfoFromDisk(path string) (*BidderInfo, error) {
	reader := infoReaderFromDisk{path}
	return loadBidderInfo(reader)
}

func loadBidderInfo(r infoReader) (*BidderInfo, error) {
	data, err := r.Read(BidderName)
	if err != nil {
		return nil, err
	}

	info := BidderInfo{}
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("error parsing yaml for bidder %s.yaml: %v", BidderName, err)
	}

	if info.version, err = semver.Parse(info.Version); err != nil {
		return nil, fmt.Errorf("invalid version for bidder %s: %v", BidderName, err)
	}
	if info.PartnerID == "" || info.Namespace == "" || info.StatsID == "" {
		return nil, fmt.Errorf("bidder %s must declare partnerId, namespace and statsId", BidderName)
	}
	if info.TargetingType == "" {
		info.TargetingType = "slot"
	}
	switch info.LineItemType {
	case "":
		info.LineItemType = LineItemTypeIDAndSize
	case LineItemTypeIDAndSize, LineItemTypeIDAndPrice:
	default:
		return nil, fmt.Errorf("bidder %s lineItemType must be %s or %s, got %q", BidderName, LineItemTypeIDAndSize, LineItemTypeIDAndPrice, info.LineItemType)
	}

	return &info, nil
}

type infoReader interface {
	Read(bidder string) ([]byte, error)
}

type infoReaderFromDisk struct {
	path string
}

func (r infoReaderFromDisk) Read(bidder string) ([]byte, error) {
	path := fmt.Sprintf("%v/%v.yaml", r.path, bidder)
	return os.ReadFile(path)
}
