// Package process stops a headless browser together with the renderer and
// GPU helpers it forked, so a crashed conversion leaves no orphans.
package process
