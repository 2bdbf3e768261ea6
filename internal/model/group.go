package model

// Kind is a device family tag matched against group names
type Kind string

const (
	KindSwitch     Kind = "switch"
	KindRouter     Kind = "router"
	KindFirewall   Kind = "firewall"
	KindStorage    Kind = "storage"
	KindGenuscreen Kind = "genuscreen"
)

// Kinds lists the recognized device families in dispatch order.
var Kinds = []Kind{KindSwitch, KindRouter, KindFirewall, KindStorage, KindGenuscreen}

// Query is a named OID
type Query struct {
	Name string `json:"name"`
	OID  string `json:"oid"`
}

// Target is a named device address
type Target struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Credentials holds the SNMPv3 authPriv secrets for a group
type Credentials struct {
	User     string `json:"user"`
	Password string `json:"-"` // auth passphrase
	PrivKey  string `json:"-"` // privacy passphrase
}

// IsZero reports whether no credential field is set.
func (c Credentials) IsZero() bool {
	return c.User == "" && c.Password == "" && c.PrivKey == ""
}

// Complete reports whether every field needed for authPriv is set.
func (c Credentials) Complete() bool {
	return c.User != "" && c.Password != "" && c.PrivKey != ""
}

// Group is one configured device group with its credentials resolved.
type Group struct {
	Name            string      `json:"name"`
	Targets         []Target    `json:"targets"`
	DeviceQueries   []Query     `json:"device_oids"`
	PortQueries     []Query     `json:"port_oids"`
	CredentialsFile string      `json:"credentials_file,omitempty"`
	Credentials     Credentials `json:"credentials"`
}
