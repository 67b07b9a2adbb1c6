package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/pkg/httpclient"
)

const (
	pathLogin     = "/security/developerIP-login"
	pathHierarchy = "/security/getUserHierarchy"
	pathLogout    = "/security/logout"
)

// KerberosOptions tunes retries of the security service calls.
type KerberosOptions struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultKerberosOptions returns the retry policy used by the CLI.
func DefaultKerberosOptions() KerberosOptions {
	return KerberosOptions{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// KerberosProvider resolves the user through the corporate security service,
// which authenticates the caller by Kerberos ticket or developer IP.
type KerberosProvider struct {
	client *httpclient.Client
	log    zerolog.Logger
	opts   KerberosOptions
}

var _ Provider = (*KerberosProvider)(nil)

// NewKerberosProvider creates a provider that talks to the security service
// behind client.
func NewKerberosProvider(client *httpclient.Client, log zerolog.Logger, opts KerberosOptions) *KerberosProvider {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &KerberosProvider{client: client, log: log, opts: opts}
}

type loginResponse struct {
	UserName string `json:"UserName"`
}

type hierarchyRequest struct {
	UserName string `json:"UserName"`
}

type hierarchyResponse struct {
	User *struct {
		Username   string          `json:"username"`
		Mail       string          `json:"mail"`
		Department string          `json:"department"`
		CN         string          `json:"cn"`
		Manager    string          `json:"manager"`
		Groups     json.RawMessage `json:"groups"`
	} `json:"user"`
}

// CurrentUser asks the security service who the caller is, then loads the
// directory details for that account.
func (p *KerberosProvider) CurrentUser(ctx context.Context) (User, error) {
	var login loginResponse
	err := p.retry(ctx, "login", func() error {
		return p.client.GetJSON(ctx, pathLogin, &login)
	})
	if err != nil {
		return User{}, fmt.Errorf("%w: login: %w", ErrUnavailable, err)
	}
	if login.UserName == "" {
		return User{}, fmt.Errorf("%w: login returned no user name", ErrUnavailable)
	}

	var hier hierarchyResponse
	err = p.retry(ctx, "hierarchy", func() error {
		return p.client.PostJSON(ctx, pathHierarchy, hierarchyRequest{UserName: login.UserName}, &hier)
	})
	if err != nil {
		return User{}, fmt.Errorf("%w: user hierarchy for %s: %w", ErrUnavailable, login.UserName, err)
	}
	if hier.User == nil {
		return User{}, fmt.Errorf("%w: no directory entry for %s", ErrUnavailable, login.UserName)
	}

	u := hier.User
	user := User{
		Username:    u.Username,
		Email:       u.Mail,
		DisplayName: u.CN,
		Department:  u.Department,
		Domain:      UnknownDomain,
		Groups:      []string{},
	}
	if u.Manager != "" {
		user.Domain = DomainFromDN(u.Manager)
	}

	var groups []string
	if len(u.Groups) > 0 && json.Unmarshal(u.Groups, &groups) == nil && groups != nil {
		user.Groups = groups
	}

	return user, nil
}

// Available reports whether the login endpoint answers successfully.
func (p *KerberosProvider) Available(ctx context.Context) bool {
	var login loginResponse
	if err := p.client.GetJSON(ctx, pathLogin, &login); err != nil {
		p.log.Warn().Err(err).Msg("security service not available")
		return false
	}
	return true
}

// Logout ends the remote session. Failures are logged and never returned.
func (p *KerberosProvider) Logout(ctx context.Context) error {
	if err := p.client.PostJSON(ctx, pathLogout, struct{}{}, nil); err != nil {
		p.log.Warn().Err(err).Msg("remote logout failed")
		return nil
	}
	p.log.Debug().Msg("remote logout succeeded")
	return nil
}

// retry runs fn until it succeeds, fails permanently, or the attempt budget
// is spent. Only transient HTTP failures are retried.
func (p *KerberosProvider) retry(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.opts.InitialInterval
	b.MaxInterval = p.opts.MaxInterval

	var err error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !httpclient.IsTransient(err) || attempt == p.opts.MaxAttempts {
			break
		}

		sleep := b.NextBackOff()
		if sleep == backoff.Stop {
			break
		}

		p.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Dur("sleep", sleep).Msg("retrying security call")

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(sleep):
		}
	}
	return err
}
