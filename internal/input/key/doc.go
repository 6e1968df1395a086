// Package key decodes raw terminal input into key and mouse events.
//
// A Decoder consumes the bytes read from a tty in raw mode:
//
//   - UTF-8 text becomes KeyRune events, one per code point
//   - control bytes become Enter, Tab, Backspace or Ctrl+letter events
//   - CSI and SS3 sequences become arrow, Home, End and Delete events,
//     with xterm modifier parameters
//   - ESC followed by a key sets ModAlt, so Alt+Enter is distinguishable
//   - SGR mouse reports (ESC [ < b ; x ; y M) become KeyMouse events
//   - cursor position reports (ESC [ row ; col R) become KeyCursorReport
//
// Sequences split across reads are held until the next Feed.
package key
