// Package discovery turns the raw path/operation definitions of an OpenAPI
// document into a typed, hierarchical model of the resources the API exposes.
//
// Path templates are clustered into collection/item pairs (`/users` and
// `/users/{id}` form one cluster), nesting is derived from the sequence of
// non-parameter path segments, and each admitted cluster becomes one
// ParsedResource carrying its CRUD capability and extracted field schema.
package discovery

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// DefaultMaxSchemaDepth bounds schema extraction recursion.
const DefaultMaxSchemaDepth = 10

// DefaultEnvelopeKeys is the ordered list of conventional wrapper field names
// probed when a response schema declares an object instead of a bare array.
// First structural match wins. The resource's own name is always probed last.
var DefaultEnvelopeKeys = []string{"data", "items", "list", "results", "records", "content"}

// Mutating HTTP verbs. A path cluster needs at least one of these to be
// admitted as a manageable resource under the default policy.
var mutatingMethods = map[string]bool{
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// Options control discovery behavior. The zero value is usable; NewDiscoverer
// fills in defaults.
type Options struct {
	// RequireMutating drops pure-GET path clusters (health checks, search
	// endpoints) from the graph. This mirrors the admin's notion of a
	// "manageable resource". Hosts that want read-only resources in the
	// graph can turn it off.
	RequireMutating *bool

	// MaxSchemaDepth bounds field extraction recursion.
	MaxSchemaDepth int

	// EnvelopeKeys overrides the conventional wrapper field names probed
	// during schema extraction.
	EnvelopeKeys []string
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	requireMutating := true
	return Options{
		RequireMutating: &requireMutating,
		MaxSchemaDepth:  DefaultMaxSchemaDepth,
		EnvelopeKeys:    DefaultEnvelopeKeys,
	}
}

// Discoverer builds resource graphs from parsed OpenAPI documents. It holds
// no per-document state and is safe for reuse across documents.
type Discoverer struct {
	requireMutating bool
	envelopeKeys    []string
	extractor       *FieldExtractor
	logger          *slog.Logger
}

// NewDiscoverer creates a Discoverer with the given options.
func NewDiscoverer(opts Options, logger *slog.Logger) *Discoverer {
	requireMutating := true
	if opts.RequireMutating != nil {
		requireMutating = *opts.RequireMutating
	}
	keys := opts.EnvelopeKeys
	if len(keys) == 0 {
		keys = DefaultEnvelopeKeys
	}
	return &Discoverer{
		requireMutating: requireMutating,
		envelopeKeys:    keys,
		extractor:       NewFieldExtractor(opts.MaxSchemaDepth, logger),
		logger:          logger.With("component", "discovery"),
	}
}

// Analyze runs discovery over the document and wraps the resulting resource
// tree in an OpenAPIAnalysis with document-wide counters.
func (d *Discoverer) Analyze(doc *openapi3.T) (*domain.OpenAPIAnalysis, error) {
	resources, err := d.Discover(doc)
	if err != nil {
		return nil, err
	}

	analysis := &domain.OpenAPIAnalysis{
		Resources:  resources,
		LastParsed: time.Now().UTC(),
	}
	if doc.Info != nil {
		analysis.Title = doc.Info.Title
		analysis.Version = doc.Info.Version
		analysis.Description = doc.Info.Description
	}
	analysis.BaseURL, _ = resolveServerBase(doc.Servers)
	for _, server := range doc.Servers {
		if server != nil && server.URL != "" {
			analysis.Servers = append(analysis.Servers, server.URL)
		}
	}

	tags := make(map[string]bool)
	for _, tag := range doc.Tags {
		if tag != nil && tag.Name != "" {
			tags[tag.Name] = true
		}
	}
	analysis.TotalPaths = len(doc.Paths.Map())
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil {
				continue
			}
			analysis.TotalOperations++
			for _, t := range op.Tags {
				tags[t] = true
			}
		}
	}
	analysis.Tags = sortedKeys(tags)
	analysis.RestfulAPIs = countRestful(resources)

	return analysis, nil
}

// Discover clusters the document's paths and returns the top-level resource
// list. A structurally unusable document fails the whole call with a
// configuration error; malformed individual path entries are skipped with a
// logged warning.
func (d *Discoverer) Discover(doc *openapi3.T) ([]*domain.ParsedResource, error) {
	if doc == nil {
		return nil, domain.NewConfigurationError("OpenAPI document is required")
	}
	if doc.Paths == nil || len(doc.Paths.Map()) == 0 {
		return nil, domain.NewConfigurationError("OpenAPI document declares no paths")
	}

	clusters := d.clusterPaths(doc)

	_, serverBasePath := resolveServerBase(doc.Servers)

	// Build resources in lexicographic cluster-key order: a parent's key is a
	// strict prefix of its children's, so parents are always created first,
	// and the order is stable across rebuilds.
	keys := make([]string, 0, len(clusters))
	for key := range clusters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	byID := make(map[string]*domain.ParsedResource, len(clusters))
	var topLevel []*domain.ParsedResource
	for _, key := range keys {
		c := clusters[key]

		methods := c.methodUnion()
		if d.requireMutating && !hasMutating(methods) {
			d.logger.Debug("Skipping pure-GET path cluster.", slog.String("cluster", key))
			continue
		}

		res := d.buildResource(c, methods, serverBasePath)
		byID[res.ID] = res

		if parent := nearestAncestor(byID, c.chain); parent != nil {
			res.ParentResourceID = parent.ID
			parent.SubResources = append(parent.SubResources, res)
		} else {
			topLevel = append(topLevel, res)
		}
	}

	return topLevel, nil
}

// pathCluster groups the collection and item routes sharing one chain of
// resource-name segments.
type pathCluster struct {
	chain          []string
	collectionPath string
	collectionOps  map[string]*openapi3.Operation
	itemOps        map[string]*openapi3.Operation
}

func (c *pathCluster) methodUnion() []string {
	set := make(map[string]bool, len(c.collectionOps)+len(c.itemOps))
	for m := range c.collectionOps {
		set[m] = true
	}
	for m := range c.itemOps {
		set[m] = true
	}
	return sortedKeys(set)
}

// clusterPaths walks every path template and groups it into the cluster named
// by its non-parameter segments. Paths are visited in sorted order so cluster
// contents never depend on map iteration.
func (d *Discoverer) clusterPaths(doc *openapi3.T) map[string]*pathCluster {
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	clusters := make(map[string]*pathCluster)
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		chain, isItem, err := splitPath(path)
		if err != nil {
			d.logger.Warn("Skipping malformed path entry.",
				slog.String("path", path), slog.Any("error", err))
			continue
		}

		key := strings.Join(chain, "/")
		c, ok := clusters[key]
		if !ok {
			c = &pathCluster{
				chain:         chain,
				collectionOps: make(map[string]*openapi3.Operation),
				itemOps:       make(map[string]*openapi3.Operation),
			}
			clusters[key] = c
		}

		ops := item.Operations()
		if isItem {
			for method, op := range ops {
				if op != nil {
					c.itemOps[method] = op
				}
			}
		} else {
			if c.collectionPath == "" {
				c.collectionPath = path
			}
			for method, op := range ops {
				if op != nil {
					c.collectionOps[method] = op
				}
			}
		}
	}

	// Item-only clusters (e.g. a singleton `/profile/{id}` without `/profile`)
	// still need a collection path template for invocation.
	for _, c := range clusters {
		if c.collectionPath == "" {
			c.collectionPath = "/" + strings.Join(c.chain, "/")
		}
	}
	return clusters
}

// splitPath returns the resource-name segments of a path template and whether
// the template addresses a single item (ends in a parameter segment).
func splitPath(path string) ([]string, bool, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, false, fmt.Errorf("empty path")
	}
	segments := strings.Split(trimmed, "/")

	var chain []string
	for _, seg := range segments {
		if seg == "" {
			return nil, false, fmt.Errorf("empty path segment")
		}
		if isParamSegment(seg) {
			continue
		}
		chain = append(chain, seg)
	}
	if len(chain) == 0 {
		return nil, false, fmt.Errorf("path contains only parameter segments")
	}
	last := segments[len(segments)-1]
	return chain, isParamSegment(last), nil
}

func isParamSegment(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

// buildResource converts one admitted cluster into a ParsedResource.
func (d *Discoverer) buildResource(c *pathCluster, methods []string, serverBasePath string) *domain.ParsedResource {
	name := c.chain[len(c.chain)-1]
	res := &domain.ParsedResource{
		ID:           strings.Join(c.chain, "."),
		Name:         name,
		Path:         c.collectionPath,
		BasePath:     joinBasePath(serverBasePath, c.collectionPath),
		Methods:      methods,
		Operations:   make(map[string]domain.OperationInfo),
		ResourceType: classifyResourceType(methods),
	}

	hasGet := false
	hasMutatingVerb := false
	for _, m := range methods {
		if m == "GET" {
			hasGet = true
		}
		if mutatingMethods[m] {
			hasMutatingVerb = true
		}
	}
	res.IsRestful = hasGet && hasMutatingVerb

	tags := make(map[string]bool)
	record := func(method string, op *openapi3.Operation) {
		if _, exists := res.Operations[method]; exists {
			return
		}
		res.Operations[method] = domain.OperationInfo{
			Method:      method,
			OperationID: op.OperationID,
			Summary:     op.Summary,
			Description: op.Description,
			Tags:        op.Tags,
			Deprecated:  op.Deprecated,
		}
		for _, t := range op.Tags {
			tags[t] = true
		}
	}
	for _, method := range sortedOpKeys(c.collectionOps) {
		record(method, c.collectionOps[method])
	}
	for _, method := range sortedOpKeys(c.itemOps) {
		record(method, c.itemOps[method])
	}
	res.Tags = sortedKeys(tags)

	res.Schema = d.extractResourceSchema(c, name)
	return res
}

// extractResourceSchema picks the representative item schema for a cluster:
// the success response of the collection GET, or failing that the POST
// request body. Absence of a schema never disqualifies the resource: the
// result is then empty but non-nil, so transform calls against the resource
// still work (an empty schema accepts any body). Nil is reserved for the
// transformer's missing-argument contract and is never stored on a resource.
func (d *Discoverer) extractResourceSchema(c *pathCluster, name string) []domain.FieldDescriptor {
	if op, ok := c.collectionOps["GET"]; ok {
		if ref := successResponseSchema(op); ref != nil {
			if itemRef := d.locateItemSchema(ref, name); itemRef != nil {
				if fields := d.extractor.ExtractFields(itemRef); len(fields) > 0 {
					return fields
				}
			}
		}
	}
	if op, ok := c.collectionOps["POST"]; ok {
		if ref := requestBodySchema(op); ref != nil && ref.Value != nil && len(ref.Value.Properties) > 0 {
			if fields := d.extractor.ExtractFields(ref); len(fields) > 0 {
				return fields
			}
		}
	}
	d.logger.Debug("No usable schema found for resource.", slog.String("resource", name))
	return []domain.FieldDescriptor{}
}

// locateItemSchema resolves a collection response schema to the schema of a
// single list element. A bare array yields its items directly; an object is
// probed for an array-typed wrapper property, conventional keys first, the
// resource's own name last.
func (d *Discoverer) locateItemSchema(ref *openapi3.SchemaRef, name string) *openapi3.SchemaRef {
	if ref == nil || ref.Value == nil {
		return nil
	}
	schema := ref.Value

	if schema.Type != nil && schema.Type.Is("array") {
		return schema.Items
	}

	keys := append(append([]string{}, d.envelopeKeys...), name)
	for _, key := range keys {
		propRef, ok := schema.Properties[key]
		if !ok || propRef == nil || propRef.Value == nil {
			continue
		}
		prop := propRef.Value
		if prop.Type != nil && prop.Type.Is("array") {
			return prop.Items
		}
	}
	return nil
}

// successResponseSchema returns the JSON schema of the operation's 200/201
// response, or of any other 2xx response when neither is declared.
func successResponseSchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op == nil || op.Responses == nil {
		return nil
	}
	responses := op.Responses.Map()

	var success *openapi3.ResponseRef
	for _, code := range []string{"200", "201"} {
		if ref, ok := responses[code]; ok {
			success = ref
			break
		}
	}
	if success == nil {
		codes := make([]string, 0, len(responses))
		for code := range responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			if strings.HasPrefix(code, "2") {
				success = responses[code]
				break
			}
		}
	}
	if success == nil || success.Value == nil || success.Value.Content == nil {
		return nil
	}
	media := success.Value.Content.Get("application/json")
	if media == nil {
		return nil
	}
	return media.Schema
}

// requestBodySchema returns the JSON schema of the operation's request body.
func requestBodySchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil || op.RequestBody.Value.Content == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil {
		return nil
	}
	return media.Schema
}

// classifyResourceType maps a method union onto a CRUD capability class.
func classifyResourceType(methods []string) domain.ResourceType {
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	if set["GET"] && set["POST"] && set["PUT"] && set["DELETE"] {
		return domain.ResourceTypeFullCRUD
	}
	for m := range set {
		if mutatingMethods[m] {
			return domain.ResourceTypeCustom
		}
	}
	return domain.ResourceTypeReadOnly
}

// nearestAncestor finds the closest already-built resource whose chain is a
// proper prefix of the given chain. Clusters whose direct parent was not
// admitted attach to the nearest admitted ancestor, or become top-level.
func nearestAncestor(byID map[string]*domain.ParsedResource, chain []string) *domain.ParsedResource {
	for i := len(chain) - 1; i > 0; i-- {
		if parent, ok := byID[strings.Join(chain[:i], ".")]; ok {
			return parent
		}
	}
	return nil
}

// resolveServerBase picks the first usable server entry and splits it into a
// base URL (scheme://host) and base path. Relative server URLs contribute a
// base path only.
func resolveServerBase(servers openapi3.Servers) (string, string) {
	for _, server := range servers {
		if server == nil || server.URL == "" {
			continue
		}
		parsed, err := url.Parse(server.URL)
		if err != nil {
			continue
		}
		basePath := strings.TrimSuffix(parsed.Path, "/")
		if parsed.IsAbs() && (parsed.Scheme == "http" || parsed.Scheme == "https") {
			return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), basePath
		}
		if !parsed.IsAbs() {
			return "", basePath
		}
	}
	return "", ""
}

func joinBasePath(serverBasePath, path string) string {
	if serverBasePath == "" {
		return path
	}
	return serverBasePath + path
}

func hasMutating(methods []string) bool {
	for _, m := range methods {
		if mutatingMethods[m] {
			return true
		}
	}
	return false
}

func countRestful(resources []*domain.ParsedResource) int {
	count := 0
	for _, r := range resources {
		if r.IsRestful {
			count++
		}
		count += countRestful(r.SubResources)
	}
	return count
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedOpKeys(ops map[string]*openapi3.Operation) []string {
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
