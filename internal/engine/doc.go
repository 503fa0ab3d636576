/*
Package engine is the orchestrator behind every addition.

An Engine is bound to one immutable Config, one batch backend and one
NumericTracer. For two plain scalars the config's precision mode picks the
representation; other operands go through the numeric dispatch table.
Anomalies found along the way are recorded on the tracer, and in strict
mode the first one at Warning or above is returned as an *AnomalyError.

	cfg, _ := engine.NewConfig(engine.WithPrecisionMode(engine.Traced))
	e, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	v, err := e.Add(numeric.Scalar(1e308), numeric.Scalar(1e308))

Default and SetDefault manage the process-wide engine used by the
package-level helpers.
*/
package engine
