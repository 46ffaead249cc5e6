// Package describe talks to a live org's REST schema service: the
// sobjects listing plus the per-object describe call, behind the OAuth2
// username-password token flow.
package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sfcatalog/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sfcatalog.scrapers.describe")

// ErrLoginDisabled means the org rejected the credential grant outright.
// Nothing per-object can recover from it, so callers must treat it as
// fatal and surface the remediation guidance to the operator.
var ErrLoginDisabled = errors.New(
	"login rejected: verify the connected app allows the username-password flow, " +
		"the credentials are current, and the security token is appended to the password")

type Client struct {
	Http *resty.Client

	opts ClientOptions

	// mu guards the session fields. The pipeline fans concurrent fetches
	// over one shared client, and an expired session makes every in-flight
	// goroutine want to re-login at once; the lock lets exactly one of
	// them refresh while the rest reuse the replacement token.
	mu          sync.Mutex
	accessToken string
	instanceURL string
}

type ClientOptions struct {
	// LoginURL is the token endpoint host, e.g. https://login.salesforce.com
	LoginURL     string `json:"login_url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	// APIVersion like "60.0"
	APIVersion string `json:"api_version"`
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "sfcatalog.scrapers.describe.http")

	if opts.APIVersion == "" {
		opts.APIVersion = "60.0"
	}
	return &Client{
		Http: client,
		opts: opts,
	}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	InstanceURL      string `json:"instance_url"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Login exchanges the configured credentials for an access token.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login(ctx)
}

// login performs the token exchange. Callers must hold mu.
func (c *Client) login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	var token tokenResponse
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "password",
			"client_id":     c.opts.ClientID,
			"client_secret": c.opts.ClientSecret,
			"username":      c.opts.Username,
			"password":      c.opts.Password,
		}).
		SetResult(&token).
		SetError(&token).
		Post(strings.TrimRight(c.opts.LoginURL, "/") + "/services/oauth2/token")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token request failed")
		return err
	}
	if res.IsError() || token.AccessToken == "" {
		err := fmt.Errorf("%w: %s %s", ErrLoginDisabled, token.Error, token.ErrorDescription)
		span.RecordError(err)
		span.SetStatus(codes.Error, "login rejected")
		return err
	}

	c.accessToken = token.AccessToken
	c.instanceURL = strings.TrimRight(token.InstanceURL, "/")
	return nil
}

func dataURL(instance, version string, parts ...string) string {
	segments := append(
		[]string{instance, "services/data", "v" + version},
		parts...,
	)
	return strings.Join(segments, "/")
}

// session returns the current token and instance url, logging in first if
// no session exists yet.
func (c *Client) session(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == "" {
		err := c.login(ctx)
		if err != nil {
			return "", "", err
		}
	}
	return c.accessToken, c.instanceURL, nil
}

// refreshSession replaces an expired token. When several goroutines hit a
// 401 off the same stale token, only the first re-logins; the rest find
// the token already replaced and reuse it.
func (c *Client) refreshSession(ctx context.Context, stale string) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == stale {
		err := c.login(ctx)
		if err != nil {
			return "", "", err
		}
	}
	return c.accessToken, c.instanceURL, nil
}

func (c *Client) get(ctx context.Context, result any, parts ...string) error {
	token, instance, err := c.session(ctx)
	if err != nil {
		return err
	}

	url := dataURL(instance, c.opts.APIVersion, parts...)
	res, err := c.Http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(result).
		Get(url)
	if err != nil {
		return err
	}
	if res.StatusCode() == 401 {
		// the session expired mid-run; one re-login, then give up
		token, instance, err = c.refreshSession(ctx, token)
		if err != nil {
			return err
		}
		url = dataURL(instance, c.opts.APIVersion, parts...)
		res, err = c.Http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(result).
			Get(url)
		if err != nil {
			return err
		}
	}
	if res.IsError() {
		return fmt.Errorf("GET %s: %s", url, res.Status())
	}
	return nil
}

// GlobalObject is one row of the sobjects listing.
type GlobalObject struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	KeyPrefix string `json:"keyPrefix"`
	Custom    bool   `json:"custom"`
	Queryable bool   `json:"queryable"`
}

// DescribeGlobal lists every object the org exposes.
func (c *Client) DescribeGlobal(ctx context.Context) ([]GlobalObject, error) {
	ctx, span := tracer.Start(ctx, "DescribeGlobal")
	defer span.End()

	var listing struct {
		Sobjects []GlobalObject `json:"sobjects"`
	}
	err := c.get(ctx, &listing, "sobjects")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "describe global failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("objects", len(listing.Sobjects)))
	return listing.Sobjects, nil
}

// Describe fetches one object's full schema.
func (c *Client) Describe(ctx context.Context, name string) (ObjectDescribe, error) {
	ctx, span := tracer.Start(ctx, "Describe")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))

	var desc ObjectDescribe
	err := c.get(ctx, &desc, "sobjects", name, "describe")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "describe failed")
		return ObjectDescribe{}, err
	}
	return desc, nil
}
