package dot11

// Information element numbers with a known length constraint.
const (
	TagHoppingPatternTable    = 9
	TagPowerConstraint        = 32
	TagPowerCapability        = 33
	TagTPCReport              = 35
	TagSupportedChannels      = 36
	TagChannelSwitch          = 37
	TagMeasurementRequest     = 38
	TagMeasurementReport      = 39
	TagIBSSDFS                = 41
	TagHTCapabilities         = 45
	TagHTOperationLegacy      = 47
	TagRSN                    = 48
	TagAPChannelReport        = 51
	TagHTOperation            = 61
	TagOverlappingBSSScan     = 74
	TagInterworking           = 107
	TagExtendedCapabilities   = 127
	TagPageSlice              = 142
	TagVHTCapabilities        = 191
	TagVHTOperation           = 192
	TagVHTTxPowerEnvelope     = 195
	TagTargetWakeTime         = 216
	TagVendorSpecific         = 221
	TagDMGOperation           = 232
	TagS1GBeaconCompatibility = 235
	TagExtension              = 255
)

type lengthRule struct {
	n     uint8
	exact bool
}

var tagRules = map[uint8]lengthRule{
	TagHoppingPatternTable:    {n: 4},
	TagPowerConstraint:        {n: 1, exact: true},
	TagPowerCapability:        {n: 2, exact: true},
	TagTPCReport:              {n: 2, exact: true},
	TagSupportedChannels:      {n: 3},
	TagChannelSwitch:          {n: 3, exact: true},
	TagMeasurementRequest:     {n: 3},
	TagMeasurementReport:      {n: 3},
	TagIBSSDFS:                {n: 7},
	TagHTCapabilities:         {n: 26, exact: true},
	TagHTOperationLegacy:      {n: 22},
	TagRSN:                    {n: 2},
	TagAPChannelReport:        {n: 3},
	TagHTOperation:            {n: 22},
	TagOverlappingBSSScan:     {n: 14, exact: true},
	TagInterworking:           {n: 1},
	TagExtendedCapabilities:   {n: 1},
	TagPageSlice:              {n: 3},
	TagVHTCapabilities:        {n: 12, exact: true},
	TagVHTOperation:           {n: 5},
	TagVHTTxPowerEnvelope:     {n: 2},
	TagTargetWakeTime:         {n: 4},
	TagVendorSpecific:         {n: 3},
	TagDMGOperation:           {n: 5},
	TagS1GBeaconCompatibility: {n: 7},
	TagExtension:              {n: 1},
}

// IsPlausibleTag reports whether an information element with the given
// number could legitimately declare length bytes of value. Tags without a
// known constraint are always plausible so that frames carrying elements we
// do not recognise are not cut short.
func IsPlausibleTag(tag, length uint8) bool {
	r, ok := tagRules[tag]
	if !ok {
		return true
	}
	if r.exact {
		return length == r.n
	}
	return length >= r.n
}
