// Package imageloader loads contact thumbnails off the display thread.
//
// # Overview
//
// The host calls LoadImage(key, slot) while binding a row. A memory cache
// hit is returned synchronously. Otherwise the slot is registered as a
// waiter on the key's request; only the first waiter creates the request,
// so each key is decoded at most once at a time no matter how many slots
// want it. Requests are queued FIFO for a fixed pool of workers run under
// an errgroup.
//
// # Delivery
//
// Workers call Config.Deliver for every waiter whose slot has not been
// rebound since it registered. Deliver runs on the worker goroutine; the
// host must hand the Delivery to its display thread and call Accept there
// before binding. Accept repeats the generation check so that a rebind
// racing the hand-off still wins. Rebinding never cancels a decode; it only
// suppresses the stale delivery.
//
// # Failures
//
// Decode errors and decoder panics never reach the host. Waiters receive a
// placeholder Delivery and the key is remembered in a TTL negative cache
// (go-cache) so a broken photo is not refetched on every scroll.
//
// # Backpressure
//
// SetPauseWork(true) holds queued requests until SetPauseWork(false). It is
// meant for fling scrolling. Decodes already running are not interrupted.
package imageloader
