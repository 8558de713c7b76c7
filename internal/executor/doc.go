/*
Package executor performs one impersonated HTTP request and normalizes the
outcome into a types.Result.

# Overview

The executor:
  - Removes any caller-supplied User-Agent (case-insensitive)
  - Routes http and https traffic through the proxy, when one is given
  - Presents the process-wide tls-client profile
  - Sends exactly one request with a 30 second deadline
  - Replaces the body of a 403 block page with a sentinel
  - Parses the original body as JSON, yielding null on failure

# Errors

Execute never returns an error. A TransportError (client setup, proxy,
DNS, connect, TLS, timeout, body read) becomes a transport result.

# Example Usage

	exec := executor.New(types.Profile{Name: "safari_15_6_1"})
	result := exec.Execute(ctx, &types.RequestSpec{
		Method:  "GET",
		URL:     "https://api.example.com/users",
		Headers: map[string]string{"Accept": "application/json"},
	})

# Resource Management

A client is created per call and its idle connections are closed before
Execute returns. Nothing is shared between calls.
*/
package executor
