package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the control service using DNS-SD
 *
 * Description:
 *
 *     Clients on the local network can find the modem without being
 *     told its address and port.  Uses the pure-Go brutella/dnssd
 *     responder, so no system daemon is needed.
 */

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

const DNSSDService = "_ft8modem._tcp"

// DefaultServiceName is "ft8modem on <hostname>", or just "ft8modem" if
// the hostname is not available.
func DefaultServiceName() string {
	var hostname, err = os.Hostname()
	if err != nil || hostname == "" {
		return "ft8modem"
	}

	hostname, _, _ = strings.Cut(hostname, ".")

	return "ft8modem on " + hostname
}

// Announce advertises the control port until ctx is done.
func Announce(ctx context.Context, name string, port int, logger *log.Logger) error {
	if name == "" {
		name = DefaultServiceName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNSSDService,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		return fmt.Errorf("DNS-SD: failed to create service: %w", svErr)
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		return fmt.Errorf("DNS-SD: failed to create responder: %w", rpErr)
	}

	if _, err := rp.Add(sv); err != nil {
		return fmt.Errorf("DNS-SD: failed to add service: %w", err)
	}

	logger.Info("DNS-SD: announcing control service", "port", port, "name", name)

	var err = rp.Respond(ctx)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
