// Package crawler walks a remote HTML directory index with a capped number of concurrent
// page fetches and downloads every numeric text file it finds into a blob store.
package crawler
