// Package capture takes full-page screenshots of web pages with headless
// Chrome, driven over the DevTools protocol by chromedp.
package capture
