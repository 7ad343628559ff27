// Package artifacts locates and orders the files a pipeline run leaves
// behind under the output root.
//
// The locator is strictly read-only: it stats files, never opens them, and
// never mutates the output tree. A missing output root is a normal empty
// state, not an error; only a directory that exists but cannot be listed
// surfaces as an AccessError.
package artifacts
