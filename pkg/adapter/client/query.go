package client

import (
	"context"
	"maps"

	"github.com/diwise/integration-sdk/pkg/adapter/types/keys"
	"github.com/diwise/integration-sdk/pkg/adapter/types/objects"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
)

const (
	resourceQueryEndpoint string = "/api/resources/query"
	resourceListKey       string = "resourceList"
)

// QueryForResources runs a resource query and turns every resource in the
// response into an object. Only the resource keys are used, any other
// information in the response, such as health, is ignored.
//
// The query is sent as is, see the Suite API documentation of
// /api/resources/query for its format. When more than one name is given, a
// separate query is made for each name.
//
// Errors are logged and result in an empty slice.
func (c *SuiteAPIClient) QueryForResources(ctx context.Context, query map[string]any) []*objects.Object {
	var err error

	ctx, span := tracer.Start(ctx, "query-for-resources")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	_, hasName := query["name"]
	_, hasRegex := query["regex"]
	if hasName && hasRegex {
		log.Warn("name and regex are mutually exclusive in resource queries, regex will be ignored in favor of name")
	}

	queries := []map[string]any{query}
	if names := toSlice(query["name"]); len(names) > 1 {
		queries = make([]map[string]any, 0, len(names))
		for _, name := range names {
			q := maps.Clone(query)
			q["name"] = []any{name}
			queries = append(queries, q)
		}
	}

	resources := []any{}

	for _, q := range queries {
		var response map[string]any
		response, err = c.PostPaged(ctx, resourceQueryEndpoint, q, resourceListKey)
		if err != nil {
			log.Error("resource query failed", "err", err.Error())
			return []*objects.Object{}
		}

		if list, ok := response[resourceListKey].([]any); ok {
			resources = append(resources, list...)
		}
	}

	result := make([]*objects.Object, 0, len(resources))

	for _, r := range resources {
		resource, ok := r.(map[string]any)
		if !ok {
			continue
		}

		resourceKey, ok := resource["resourceKey"].(map[string]any)
		if !ok {
			continue
		}

		if key, ok := resourceKeyToKey(resourceKey); ok {
			result = append(result, objects.New(key))
		}
	}

	return result
}

func resourceKeyToKey(resourceKey map[string]any) (keys.Key, bool) {
	adapterKind, ok1 := resourceKey["adapterKindKey"].(string)
	resourceKind, ok2 := resourceKey["resourceKindKey"].(string)
	name, ok3 := resourceKey["name"].(string)

	if !ok1 || !ok2 || !ok3 {
		return keys.Key{}, false
	}

	identifiers := []keys.Identifier{}

	for _, ri := range toSlice(resourceKey["resourceIdentifiers"]) {
		identifier, ok := ri.(map[string]any)
		if !ok {
			return keys.Key{}, false
		}

		identifierType, ok := identifier["identifierType"].(map[string]any)
		if !ok {
			return keys.Key{}, false
		}

		identifierKey, ok1 := identifierType["name"].(string)
		unique, ok2 := identifierType["isPartOfUniqueness"].(bool)
		value, ok3 := identifier["value"].(string)

		if !ok1 || !ok2 || !ok3 {
			return keys.Key{}, false
		}

		if unique {
			identifiers = append(identifiers, keys.NewIdentifier(identifierKey, value))
		} else {
			identifiers = append(identifiers, keys.NewNonUniqueIdentifier(identifierKey, value))
		}
	}

	return keys.New(adapterKind, resourceKind, name, identifiers...), true
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		result := make([]any, 0, len(s))
		for _, str := range s {
			result = append(result, str)
		}
		return result
	}
	return nil
}
