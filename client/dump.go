package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
)

// NewDump holds the fields of a dump to create.
type NewDump struct {
	Title       string
	Description string
	Code        string
	// Access is the visibility of the dump, e.g. "public" or "private".
	Access   string
	Language string
}

// AddOptions configures dump creation.
type AddOptions struct {
	// PreCheck validates Access and Language against the API before uploading.
	// It is implied when the client was built WithPreCheck(true).
	PreCheck bool
}

// AddCode stores a code dump and returns its URL.
func (c *Client) AddCode(ctx context.Context, d NewDump) (string, error) {
	return c.AddCodeWithOptions(ctx, d, AddOptions{})
}

// AddCodeWithOptions stores a code dump with custom options and returns its URL.
func (c *Client) AddCodeWithOptions(ctx context.Context, d NewDump, opts AddOptions) (string, error) {
	return c.addCode(ctx, "AddCode", d, opts)
}

// AddCodeFromFile loads the code from path and stores it as a dump.
// d.Code is ignored.
func (c *Client) AddCodeFromFile(ctx context.Context, path string, d NewDump) (string, error) {
	return c.AddCodeFromFileWithOptions(ctx, path, d, AddOptions{})
}

// AddCodeFromFileWithOptions is AddCodeFromFile with custom options.
func (c *Client) AddCodeFromFileWithOptions(ctx context.Context, path string, d NewDump, opts AddOptions) (string, error) {
	if strings.TrimSpace(path) == "" {
		err := &Error{Code: ErrInvalidArgument, Message: "file path cannot be empty"}
		c.warn("AddCodeFromFile", err.Message)
		return "", err
	}

	contents, err := c.LoadFileContents(path, false)
	if err != nil {
		c.warn("AddCodeFromFile", fmt.Sprintf("The file %s does not exist", path), "path", path)
		return "", err
	}

	d.Code = contents
	return c.addCode(ctx, "AddCodeFromFile", d, opts)
}

func (c *Client) addCode(ctx context.Context, op string, d NewDump, opts AddOptions) (string, error) {
	params := url.Values{}
	for _, field := range []struct{ name, value string }{
		{"title", d.Title},
		{"description", d.Description},
		{"code", d.Code},
		{"access", d.Access},
		{"language", d.Language},
	} {
		if field.value == "" {
			c.warn(op, "You cannot set a parameter with an empty value", "name", field.name)
		}
		params.Set(field.name, field.value)
	}

	if opts.PreCheck || c.preCheck {
		if err := c.preCheckAddCode(ctx, d.Access, d.Language); err != nil {
			return "", err
		}
	}

	raw, err := c.execute(ctx, CommandAddCode, params)
	if err != nil {
		return "", err
	}

	var dumpURL string
	if err := json.Unmarshal(raw, &dumpURL); err != nil {
		return "", &Error{Code: ErrDecode, Message: fmt.Sprintf("decoding %s response: %v", CommandAddCode, err), Err: err}
	}
	if dumpURL == "" {
		return "", &Error{Code: ErrDecode, Message: fmt.Sprintf("%s response carries no dump URL", CommandAddCode)}
	}
	return dumpURL, nil
}

// preCheckAddCode succeeds only when access and language are both among
// the values the API currently accepts.
func (c *Client) preCheckAddCode(ctx context.Context, access, language string) error {
	allowedAccess, err := c.GetAccess(ctx)
	if err != nil {
		return fmt.Errorf("fetching access levels: %w", err)
	}
	allowedLanguages, err := c.GetLanguages(ctx)
	if err != nil {
		return fmt.Errorf("fetching languages: %w", err)
	}

	if !slices.Contains(allowedAccess, access) {
		c.warn("preCheckAddCode", "access level not accepted", "access", access)
		return &Error{Code: ErrPreCheck, Message: fmt.Sprintf("access %q is not one of %v", access, allowedAccess)}
	}
	if !slices.Contains(allowedLanguages, language) {
		c.warn("preCheckAddCode", "language not accepted", "language", language)
		return &Error{Code: ErrPreCheck, Message: fmt.Sprintf("language %q is not supported", language)}
	}
	return nil
}

// LoadFileContents returns the contents of the file at path.
// When reportError is set, a failure is also logged as a warning.
func (c *Client) LoadFileContents(path string, reportError bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("reading %s: %v", path, err)
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("The file %s does not exist", path)
		}
		if reportError {
			c.warn("LoadFileContents", msg, "path", path)
		}
		return "", &Error{Code: ErrFileNotFound, Message: msg, Err: err}
	}
	return string(data), nil
}
