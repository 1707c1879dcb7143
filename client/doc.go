// Package client provides a Go client for the CodeDump.io API (https://codedump.io).
//
// # Installation
//
//	go get github.com/tombowditch/codedump/client
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/tombowditch/codedump/client"
//	)
//
//	func main() {
//		c := client.New(client.WithCredentials("key", "secret"))
//
//		// Create a dump
//		url, err := c.AddCode(context.Background(), client.NewDump{
//			Title:    "Hello",
//			Code:     `fmt.Println("Hello, World!")`,
//			Access:   "public",
//			Language: "go",
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println("Dump URL:", url)
//
//		// List the languages the API accepts
//		langs, err := c.GetLanguages(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(langs)
//	}
//
// # Pre-checks
//
// The access level and language of a new dump can be checked against
// access/get and languages/get before uploading:
//
//	url, err := c.AddCodeWithOptions(ctx, d, client.AddOptions{PreCheck: true})
//
// or for every call:
//
//	c := client.New(client.WithCredentials(key, secret), client.WithPreCheck(true))
//
// # Custom Configuration
//
//	c := client.New(
//		client.WithCredentials(key, secret),
//		client.WithBaseURL("https://staging.codedump.io/api"),
//		client.WithTimeout(10 * time.Second),
//		client.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
//	)
//
// # Other Commands
//
// Commands without a typed method can be called with SetParameter and Do:
//
//	c.SetParameter("id", "abc123")
//	raw, err := c.Do(ctx, client.Command("code/get"))
//
// # Error Handling
//
//	url, err := c.AddCode(ctx, d)
//	if client.IsNoAPIKey(err) {
//		// No credentials configured
//	}
//	if client.IsUnauthorized(err) {
//		// Key or secret refused
//	}
//	if client.IsRejected(err) {
//		// API answered success=false; err carries its reason
//	}
package client
