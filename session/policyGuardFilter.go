package session

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"strconv"

	"lattice/authority"

	"github.com/gin-gonic/gin"
)

// PolicyGuardFilter enforces the operation policy table before any
// handler runs. Operations without a registered policy are unprotected.
// It must be installed after SimpleAuthFilter on guarded route groups.
func PolicyGuardFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		policy, found := authority.FindPolicy(ctx.Request.Method, ctx.FullPath())
		if !found {
			ctx.Next()
			return
		}

		params := BuildParamBag(ctx)
		sess := ExtractSessionFromGinContext(ctx)
		verdict, err := authority.Decide(ctx.Request.Context(), sess.Actor(), policy, params)
		if err != nil {
			panic(err)
		}
		if !verdict.Allowed {
			panic(verdict.AsError())
		}
		ctx.Next()
	}
}

// BuildParamBag merges the request's path parameters, query parameters
// and scalar JSON body fields into the ordered parameter bag the
// authorization engine resolves scopes from.
func BuildParamBag(c *gin.Context) *authority.ParamBag {
	path := map[string]string{}
	for _, param := range c.Params {
		path[param.Key] = param.Value
	}

	query := map[string]string{}
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	return &authority.ParamBag{Path: path, Query: query, Body: bodyParams(c)}
}

func bodyParams(c *gin.Context) map[string]string {
	params := map[string]string{}
	if c.Request == nil || c.Request.Body == nil || c.Request.ContentLength == 0 {
		return params
	}

	// body bytes are cached under gin's body-bytes key, so handlers can
	// still bind the body afterwards with ShouldBindBodyWith
	var raw []byte
	if cached, found := c.Get(gin.BodyBytesKey); found {
		if cachedBytes, ok := cached.([]byte); ok {
			raw = cachedBytes
		}
	}
	if raw == nil {
		bodyBytes, err := ioutil.ReadAll(c.Request.Body)
		if err != nil {
			return params
		}
		raw = bodyBytes
		c.Set(gin.BodyBytesKey, raw)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	fields := map[string]interface{}{}
	if err := decoder.Decode(&fields); err != nil {
		return params
	}
	for name, value := range fields {
		switch v := value.(type) {
		case string:
			params[name] = v
		case json.Number:
			params[name] = v.String()
		case bool:
			params[name] = strconv.FormatBool(v)
		}
	}
	return params
}
