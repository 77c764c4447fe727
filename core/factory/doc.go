// Package factory is the generic registry behind pluggable modules such as
// metrics sinks and mapping algorithms. A module is selected by a type name
// and configured with a raw map decoded into a typed struct.
//
//	sinks := factory.NewRegistry[metrics.MetricsSink]()
//	_ = sinks.Register("prometheus", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct{ Textfile string `json:"textfile"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewPromSink(c.Textfile)
//	})
//	s, err := sinks.Create(factory.ModuleConfig{Type: "prometheus", Conf: map[string]any{"textfile": "out/metrics.prom"}})
package factory
