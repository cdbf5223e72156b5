package dnsbench

import (
	"io"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/miekg/dns"
)

func newRequestLogger(w io.Writer) log.Interface {
	return &log.Logger{Handler: jsonhandler.New(w), Level: log.InfoLevel}
}

func logRequest(l log.Interface, workerID uint32, target string, reqID uint16, qname string, a Attempt) {
	errstr := "<nil>"
	if a.Err != nil {
		errstr = a.Err.Error()
	}
	l.WithFields(log.Fields{
		"worker":    workerID,
		"target":    target,
		"reqid":     reqID,
		"qname":     dns.Fqdn(qname),
		"qtype":     dns.TypeToString[dns.TypeA],
		"outcome":   a.Outcome.String(),
		"discarded": a.Discarded,
		"err":       errstr,
		"duration":  a.Duration.String(),
	}).Info("request")
}
