package tracing

import (
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span per request, named by the matched route,
// and echoes the trace headers on the response
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, parentID := FromHeader(c.Request.Header)
		ctx := WithTraceContext(c.Request.Context(), traceID, parentID)

		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		ToHeader(ctx, c.Writer.Header())

		c.Next()

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last
		}
		span.End(c.Writer.Status(), err)
		tracer.Submit(span)
	}
}
