package walker

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gosnmp/gosnmp"

	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/martinsuchenak/snmpinfo/internal/model"
)

const (
	defaultSNMPPort       = 161
	defaultSNMPTimeout    = 5 * time.Second
	defaultMaxRepetitions = 25
)

// SNMPWalker speaks SNMPv3 directly through gosnmp and renders every PDU in the
// same text form snmpwalk prints, so both backends share one parser.
type SNMPWalker struct {
	timeout time.Duration
}

// NewSNMPWalker creates a native walker. The timeout applies per request.
func NewSNMPWalker(timeout time.Duration) *SNMPWalker {
	if timeout <= 0 {
		timeout = defaultSNMPTimeout
	}
	return &SNMPWalker{timeout: timeout}
}

// client builds an authPriv SHA/AES session for target, which may carry a port.
func (w *SNMPWalker) client(ctx context.Context, creds model.Credentials, target string) (*gosnmp.GoSNMP, error) {
	host, port := target, uint16(defaultSNMPPort)
	if h, p, err := net.SplitHostPort(target); err == nil {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid port in %q: %w", target, err)
		}
		host, port = h, uint16(n)
	}

	return &gosnmp.GoSNMP{
		Context:        ctx,
		Target:         host,
		Port:           port,
		Transport:      "udp",
		Version:        gosnmp.Version3,
		Timeout:        w.timeout,
		Retries:        0,
		MaxRepetitions: defaultMaxRepetitions,
		SecurityModel:  gosnmp.UserSecurityModel,
		MsgFlags:       gosnmp.AuthPriv,
		SecurityParameters: &gosnmp.UsmSecurityParameters{
			UserName:                 creds.User,
			AuthenticationProtocol:   gosnmp.SHA,
			AuthenticationPassphrase: creds.Password,
			PrivacyProtocol:          gosnmp.AES,
			PrivacyPassphrase:        creds.PrivKey,
		},
	}, nil
}

// Walk performs a bulk walk of oid on target.
func (w *SNMPWalker) Walk(ctx context.Context, creds model.Credentials, oid, target string) ([]string, error) {
	if err := checkCredentials(creds, oid, target); err != nil {
		return nil, err
	}

	g, err := w.client(ctx, creds, target)
	if err != nil {
		return nil, &WalkError{OID: oid, Target: target, Err: err}
	}

	if err := g.Connect(); err != nil {
		return nil, &WalkError{OID: oid, Target: target, Err: fmt.Errorf("connect: %w", err)}
	}
	defer g.Conn.Close()

	log.Debug("Starting bulk walk", "oid", oid, "target", target)

	var lines []string
	err = g.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines = append(lines, FormatPDU(pdu))
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &WalkError{OID: oid, Target: target, Err: err}
	}

	return lines, nil
}

// FormatPDU renders a PDU the way snmpwalk prints it with numeric OIDs. Known
// enumerated columns get their labels, see ResolvesEnums.
func FormatPDU(pdu gosnmp.SnmpPDU) string {
	return strings.TrimPrefix(pdu.Name, ".") + " = " + formatValue(pdu)
}

func formatValue(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		b, _ := pdu.Value.([]byte)
		if printable(b) {
			return `STRING: "` + escapeQuote.Replace(string(b)) + `"`
		}
		return "Hex-STRING: " + fmt.Sprintf("% X", b)
	case gosnmp.Integer:
		return "INTEGER: " + enumLabel(pdu.Name, gosnmp.ToBigInt(pdu.Value).Int64())
	case gosnmp.Counter32:
		return "Counter32: " + gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.Gauge32:
		return "Gauge32: " + gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.Counter64:
		return "Counter64: " + gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.Uinteger32:
		return "UInteger32: " + gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.TimeTicks:
		return formatTimeticks(gosnmp.ToBigInt(pdu.Value).Uint64())
	case gosnmp.ObjectIdentifier:
		return "OID: " + fmt.Sprint(pdu.Value)
	case gosnmp.IPAddress:
		return "IpAddress: " + fmt.Sprint(pdu.Value)
	case gosnmp.Null:
		return `""`
	case gosnmp.NoSuchObject:
		return "No Such Object available on this agent at this OID"
	case gosnmp.NoSuchInstance:
		return "No Such Instance currently exists at this OID"
	case gosnmp.EndOfMibView:
		return "No more variables left in this MIB View (It is past the end of the MIB tree)"
	default:
		return fmt.Sprintf("%v: %v", pdu.Type, pdu.Value)
	}
}

var escapeQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// formatTimeticks prints hundredths of a second as "(n) 1 day, 2:03:04.05".
func formatTimeticks(ticks uint64) string {
	cs := ticks % 100
	secs := ticks / 100
	days := secs / 86400
	clock := fmt.Sprintf("%d:%02d:%02d.%02d", secs/3600%24, secs/60%60, secs%60, cs)
	switch days {
	case 0:
		return fmt.Sprintf("Timeticks: (%d) %s", ticks, clock)
	case 1:
		return fmt.Sprintf("Timeticks: (%d) 1 day, %s", ticks, clock)
	default:
		return fmt.Sprintf("Timeticks: (%d) %d days, %s", ticks, days, clock)
	}
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
