package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"

	"github.com/gnunet-go/gns/dht"
	"github.com/gnunet-go/gns/dnsstub"
	"github.com/gnunet-go/gns/log"
	"github.com/gnunet-go/gns/namestore"
	"github.com/gnunet-go/gns/resolver"
	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/util"
	"github.com/gnunet-go/gns/zone"
)

//nolint:gochecknoglobals
var (
	queryType  string
	queryZone  string
	onlyCached bool
)

//nolint:gochecknoglobals
var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Args:  cobra.ExactArgs(1),
	Short: "resolves a name through GNS",
	Run:   runQuery,
}

//nolint:gochecknoinits
func init() {
	queryCmd.Flags().StringVarP(&queryType, "type", "t", "A", "record type to query")
	queryCmd.Flags().StringVarP(&queryZone, "zone", "z", "", "zkey of the starting zone (overrides config)")
	queryCmd.Flags().BoolVar(&onlyCached, "only-cached", false, "answer from the local namestore only")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(_ *cobra.Command, args []string) {
	startZone, err := resolveStartZone()
	util.FatalOnError("invalid starting zone: ", err)

	ctx, err := resolver.NewContext(cfg, resolver.Collaborators{
		Namestore:   namestore.NewMemory(uint(cfg.Cache.MaxItemsCount)),
		DHT:         dht.NewMemory(),
		DNSStub:     dnsstub.NewClient(cfg.DNS.Timeout.ToDuration()),
		StdResolver: dnsstub.NewStdResolver(),
	})
	util.FatalOnError("can't create resolver: ", err)

	defer func() {
		util.LogOnError("error during shutdown: ", ctx.Close())
	}()

	recordType, err := parseRecordType(queryType)
	util.FatalOnError("invalid record type: ", err)

	result := make(chan []*rr.Record, 1)

	ctx.Lookup(&resolver.LookupRequest{
		Name:       args[0],
		Type:       recordType,
		Zone:       startZone,
		OnlyCached: onlyCached,
	}, func(records []*rr.Record) {
		result <- records
	})

	records := <-result
	if len(records) == 0 {
		log.Log().Fatalf("'%s' could not be resolved", args[0])
	}

	for _, line := range formatMatching(args[0], records, recordType) {
		fmt.Println(line)
	}
}

// formatMatching renders the records satisfying the requested type; a
// terminal record set can carry siblings of other types (a LEHO next to
// the A it annotates).
func formatMatching(owner string, records []*rr.Record, desired rr.Type) []string {
	lines := make([]string, 0, len(records))

	for _, rec := range records {
		if rec.Matches(desired) {
			lines = append(lines, formatRecord(owner, rec))
		}
	}

	return lines
}

func resolveStartZone() (*zone.PublicKey, error) {
	zkey := cfg.Resolver.StartZone
	if queryZone != "" {
		zkey = queryZone
	}

	if zkey == "" {
		return nil, nil
	}

	return zone.ParseZkey(zkey)
}

func parseRecordType(name string) (rr.Type, error) {
	switch strings.ToUpper(name) {
	case "ANY":
		return rr.TypeAny, nil
	case "PKEY":
		return rr.TypePKEY, nil
	case "LEHO":
		return rr.TypeLEHO, nil
	case "VPN":
		return rr.TypeVPN, nil
	case "GNS2DNS":
		return rr.TypeGNS2DNS, nil
	}

	if t, ok := dns.StringToType[strings.ToUpper(name)]; ok {
		return rr.Type(t), nil
	}

	return 0, fmt.Errorf("unknown record type '%s'", name)
}

func formatRecord(owner string, rec *rr.Record) string {
	if converted, err := rr.ToRR(rec, owner, time.Now()); err == nil {
		return converted.String()
	}

	return fmt.Sprintf("%s\t%s\t%x", owner, rec.Type, rec.Data)
}
