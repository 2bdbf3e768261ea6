package walker

import (
	"strconv"
	"strings"
)

// enumColumns maps the numeric OID of an enumerated table column to its
// labels, so native walks print "up(1)" the way snmpwalk does with MIBs loaded.
var enumColumns = map[string]map[int64]string{
	// IF-MIB::ifAdminStatus
	"1.3.6.1.2.1.2.2.1.7": {1: "up", 2: "down", 3: "testing"},
	// IF-MIB::ifOperStatus
	"1.3.6.1.2.1.2.2.1.8": {
		1: "up", 2: "down", 3: "testing", 4: "unknown",
		5: "dormant", 6: "notPresent", 7: "lowerLayerDown",
	},
	// EtherLike-MIB::dot3StatsDuplexStatus
	"1.3.6.1.2.1.10.7.2.1.19": {1: "unknown", 2: "halfDuplex", 3: "fullDuplex"},
	// ENTITY-SENSOR-MIB::entPhySensorOperStatus
	"1.3.6.1.2.1.99.1.1.1.5": {1: "ok", 2: "unavailable", 3: "nonoperational"},
	// CISCO-ENTITY-SENSOR-MIB::entSensorStatus
	"1.3.6.1.4.1.9.9.91.1.1.1.1.5": {1: "ok", 2: "unavailable", 3: "nonoperational"},
}

// enumColumn returns the labels of the column oid belongs to.
func enumColumn(oid string) (map[int64]string, bool) {
	oid = strings.TrimPrefix(oid, ".")
	for {
		if labels, ok := enumColumns[oid]; ok {
			return labels, true
		}
		i := strings.LastIndexByte(oid, '.')
		if i < 0 {
			return nil, false
		}
		oid = oid[:i]
	}
}

// ResolvesEnums reports whether the native walker prints labels for the
// integer values found under oid.
func ResolvesEnums(oid string) bool {
	_, ok := enumColumn(oid)
	return ok
}

// enumLabel renders an INTEGER value under oid as "label(n)" when the column
// and value are known, and as the bare number otherwise.
func enumLabel(oid string, n int64) string {
	s := strconv.FormatInt(n, 10)
	if labels, ok := enumColumn(oid); ok {
		if label, ok := labels[n]; ok {
			return label + "(" + s + ")"
		}
	}
	return s
}
