// Package messenger delivers rendered charts to WhatsApp groups by driving
// WhatsApp Web in Chrome through chromedp.
//
// A Chrome profile that is already logged in (user_data_dir) is required;
// the sender never handles the QR pairing.
package messenger
