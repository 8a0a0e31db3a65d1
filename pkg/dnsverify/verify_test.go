package dnsverify

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResolver map[string][]string

func (f fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if name == "broken.test" {
		return nil, errors.New("server misbehaving")
	}
	records, ok := f[name]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
	}
	return records, nil
}

func TestSenderDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from string
		want string
	}{
		{from: "SuperCoolApp <noreply@SuperCoolApp.com>", want: "supercoolapp.com"},
		{from: "noreply@example.com", want: "example.com"},
		{from: `"Acme, Inc." <hello@mail.acme.test>`, want: "mail.acme.test"},
	}
	for _, tt := range tests {
		got, err := SenderDomain(tt.from)
		require.NoError(t, err, tt.from)
		require.Equal(t, tt.want, got)
	}

	_, err := SenderDomain("not an address")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckSender(t *testing.T) {
	t.Parallel()

	resolver := fakeResolver{
		"good.test":        {"google-site-verification=abc", "v=spf1 include:amazonses.com ~all"},
		"_dmarc.good.test": {"v=DMARC1; p=quarantine"},
		"nospf.test":       {"v=spf1 include:_spf.google.com ~all"},
		"nodmarc.test":     {"v=spf1 include:amazonses.com -all"},
	}
	ctx := context.Background()

	t.Run("configured domain", func(t *testing.T) {
		t.Parallel()

		report, err := CheckSender(ctx, resolver, " Good.test ")
		require.NoError(t, err)
		require.Equal(t, "good.test", report.Domain)
		require.Equal(t, "v=spf1 include:amazonses.com ~all", report.SPF)
		require.Equal(t, "v=DMARC1; p=quarantine", report.DMARC)
		require.NoError(t, report.Err())
	})

	t.Run("spf without ses", func(t *testing.T) {
		t.Parallel()

		report, err := CheckSender(ctx, resolver, "nospf.test")
		require.NoError(t, err)
		require.ErrorIs(t, report.Err(), ErrSPFMissing)
	})

	t.Run("missing dmarc", func(t *testing.T) {
		t.Parallel()

		report, err := CheckSender(ctx, resolver, "nodmarc.test")
		require.NoError(t, err)
		require.NotEmpty(t, report.SPF)
		require.ErrorIs(t, report.Err(), ErrDMARCMissing)
		require.NotErrorIs(t, report.Err(), ErrSPFMissing)
	})

	t.Run("unknown domain misses both", func(t *testing.T) {
		t.Parallel()

		report, err := CheckSender(ctx, resolver, "absent.test")
		require.NoError(t, err)
		require.ErrorIs(t, report.Err(), ErrSPFMissing)
		require.ErrorIs(t, report.Err(), ErrDMARCMissing)
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()

		_, err := CheckSender(ctx, resolver, "broken.test")
		require.ErrorIs(t, err, ErrDNSLookupFailed)
	})

	t.Run("empty domain", func(t *testing.T) {
		t.Parallel()

		_, err := CheckSender(ctx, resolver, "  ")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
