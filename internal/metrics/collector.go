package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/any-hub/fsprovider/internal/cache"
)

// cacheCollector exports cache.Registry.Snapshot with one series per cache id.
type cacheCollector struct {
	caches *cache.Registry

	size         *prometheus.Desc
	capacity     *prometheus.Desc
	hits         *prometheus.Desc
	negativeHits *prometheus.Desc
	misses       *prometheus.Desc
	loads        *prometheus.Desc
	loadFailures *prometheus.Desc
	evictions    *prometheus.Desc
	refreshes    *prometheus.Desc
}

func newCacheCollector(namespace string, caches *cache.Registry) *cacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "content_cache", name), help, []string{"cache"}, nil)
	}
	return &cacheCollector{
		caches:       caches,
		size:         desc("entries", "Current number of cached entries"),
		capacity:     desc("capacity", "Maximum number of cached entries"),
		hits:         desc("hits_total", "Lookups answered with cached content"),
		negativeHits: desc("negative_hits_total", "Lookups answered with a cached absent result"),
		misses:       desc("misses_total", "Lookups that required parsing"),
		loads:        desc("loads_total", "Content files parsed"),
		loadFailures: desc("load_failures_total", "Content files that failed to parse"),
		evictions:    desc("evictions_total", "Entries evicted by the LRU bound"),
		refreshes:    desc("refreshes_total", "Entries replaced by a refresh"),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.size, c.capacity, c.hits, c.negativeHits, c.misses,
		c.loads, c.loadFailures, c.evictions, c.refreshes,
	} {
		ch <- d
	}
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	for id, stats := range c.caches.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(stats.Size), id)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(stats.Capacity), id)
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits), id)
		ch <- prometheus.MustNewConstMetric(c.negativeHits, prometheus.CounterValue, float64(stats.NegativeHits), id)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses), id)
		ch <- prometheus.MustNewConstMetric(c.loads, prometheus.CounterValue, float64(stats.Loads), id)
		ch <- prometheus.MustNewConstMetric(c.loadFailures, prometheus.CounterValue, float64(stats.LoadFailures), id)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions), id)
		ch <- prometheus.MustNewConstMetric(c.refreshes, prometheus.CounterValue, float64(stats.Refreshes), id)
	}
}
