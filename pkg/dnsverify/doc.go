// Package dnsverify checks that a sender domain is set up for Amazon SES.
//
// SES delivers reliably only when the From domain publishes an SPF record
// that includes amazonses.com and a DMARC policy:
//
//	example.com        TXT "v=spf1 include:amazonses.com ~all"
//	_dmarc.example.com TXT "v=DMARC1; p=quarantine"
//
// Usage:
//
//	domain, err := dnsverify.SenderDomain(cfg.FromAddress)
//	if err != nil {
//		return err
//	}
//	report, err := dnsverify.CheckSender(ctx, nil, domain)
//	if err != nil {
//		return err // lookup failed
//	}
//	if err := report.Err(); err != nil {
//		// records missing
//	}
package dnsverify
