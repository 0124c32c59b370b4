// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// portico is the desktop shell binary. It locates a Node.js runtime,
// launches the backend service as a supervised child process, serves
// the pre-built frontend in production mode, and opens the application
// window once the backend answers its health check. On exit it tears
// down the child process and the static server.
package main
