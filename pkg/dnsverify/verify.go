package dnsverify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"strings"
)

var (
	ErrDNSLookupFailed = errors.New("dns lookup failed")
	ErrInvalidInput    = errors.New("invalid sender address or domain")
	ErrSPFMissing      = errors.New("spf record does not authorize amazon ses")
	ErrDMARCMissing    = errors.New("dmarc record not found")
)

// sesSPFInclude is the SPF mechanism that authorizes SES to send for a domain.
const sesSPFInclude = "include:amazonses.com"

// Resolver is the subset of net.Resolver used here.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Report describes the sender-domain records that matter for SES delivery.
type Report struct {
	Domain string
	SPF    string // Matching SPF record, empty when absent
	DMARC  string // DMARC policy record, empty when absent
}

// Err reports every missing requirement, or nil when both records exist.
func (r Report) Err() error {
	var errs []error
	if r.SPF == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrSPFMissing, r.Domain))
	}
	if r.DMARC == "" {
		errs = append(errs, fmt.Errorf("%w: _dmarc.%s", ErrDMARCMissing, r.Domain))
	}
	return errors.Join(errs...)
}

// SenderDomain extracts the domain of a From address such as
// "App <noreply@app.com>" or "noreply@app.com".
func SenderDomain(from string) (string, error) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	_, domain, ok := strings.Cut(addr.Address, "@")
	if !ok || domain == "" {
		return "", ErrInvalidInput
	}
	return strings.ToLower(domain), nil
}

// CheckSender looks up the SPF and DMARC TXT records of domain.
// A nil resolver uses net.DefaultResolver. Missing records are reported in
// the Report, not as errors; only lookup failures are returned.
func CheckSender(ctx context.Context, resolver Resolver, domain string) (Report, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return Report{}, ErrInvalidInput
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	report := Report{Domain: domain}

	records, err := lookupTXT(ctx, resolver, domain)
	if err != nil {
		return report, err
	}
	for _, record := range records {
		if strings.HasPrefix(record, "v=spf1") && strings.Contains(record, sesSPFInclude) {
			report.SPF = record
			break
		}
	}

	records, err = lookupTXT(ctx, resolver, "_dmarc."+domain)
	if err != nil {
		return report, err
	}
	for _, record := range records {
		if strings.HasPrefix(record, "v=DMARC1") {
			report.DMARC = record
			break
		}
	}

	return report, nil
}

// lookupTXT treats NXDOMAIN as "no records".
func lookupTXT(ctx context.Context, resolver Resolver, name string) ([]string, error) {
	records, err := resolver.LookupTXT(ctx, name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDNSLookupFailed, name, err)
	}
	return records, nil
}
