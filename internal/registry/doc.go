// Package registry loads trees of template or configuration files into a
// nested map keyed by path segments, so prompt collections can be addressed
// as registry["agents"]["planner"]["system"].
package registry
