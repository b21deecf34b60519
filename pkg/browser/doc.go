// Package browser abstracts a controllable browser tab behind small
// Session and Element interfaces, with a production implementation backed
// by Playwright. Core packages (auth, courses) only ever borrow a Session;
// the lifecycle of the underlying browser belongs to the caller.
package browser
