package errortypes

import "github.com/prebid/openrtb/v20/openrtb3"

// GetNBRCodeFromError maps a pass reason onto the OpenRTB no-bid reason reported to callers.
func GetNBRCodeFromError(err error) openrtb3.NoBidReason {
	switch ReadCode(err) {
	case ConfigErrorCode, UnknownRegionErrorCode:
		return openrtb3.NoBidInvalidRequest
	case BadServerResponseErrorCode, FailedToRequestBidsErrorCode:
		return openrtb3.NoBidTechnicalError
	default:
		return openrtb3.NoBidUnknownError
	}
}
