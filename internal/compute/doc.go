// Package compute talks to the external step-generation service.
//
// The service exposes two JSON endpoints:
//
//	POST /generate_data  {size, dtype, sorted}          -> initial data
//	POST /run_algorithm  {algorithm, input_data, ...}   -> {"steps": [...]}
//
// Failures come back as {"error": "..."} with a 4xx or 5xx status and are
// returned as a *ServiceError.
//
// # Example
//
//	c := compute.New("http://127.0.0.1:5000", 30*time.Second, logger)
//	sc, err := c.Fetch(ctx, "bubble_sort", compute.FetchOptions{Size: 8})
package compute
