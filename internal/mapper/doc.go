// Package mapper resolves logical resource paths below a provider root into
// resources backed by the provider's filesystem. FileMapper exposes plain
// files and folders; ContentFileMapper exposes the resources described by
// content files ("page.json" describes "page" and everything nested in it)
// and reads them through the provider's ContentCache.
package mapper
