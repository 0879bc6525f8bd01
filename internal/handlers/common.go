// common.go
//
// A recipe sharing backend: recipes, favorites, shopping lists and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram.
// foodgram is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/localnerve/foodgram/internal/utils"
)

// parseTags extracts tag slugs from query parameters, supporting both
// multiple 'tags' keys and comma-separated values.
func parseTags(c *fiber.Ctx) []string {
	seen := make(map[string]struct{})
	var tags []string

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != "tags" {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			tags = append(tags, v)
		}
	}
	return tags
}

// idParam parses a positive integer path parameter.
func idParam(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NotFound("not_found", "[404] Resource Not Found")
	}
	return id, nil
}

// boolQuery parses a 1/0/true/false query flag. Missing or unparseable
// values leave the filter unset.
func boolQuery(c *fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// intQuery parses a non-negative integer query parameter.
func intQuery(c *fiber.Ctx, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func pageRequest(c *fiber.Ctx, defaultSize int) services.PageRequest {
	page, _ := intQuery(c, "page")
	limit, _ := intQuery(c, "limit")
	return services.PageRequest{Page: page, Limit: limit}.Normalize(defaultSize)
}

// recipesLimit reads recipes_limit, 0 meaning unlimited.
func recipesLimit(c *fiber.Ctx) int {
	limit, _ := intQuery(c, "recipes_limit")
	return limit
}

// pageURL rewrites the request URL to point at page.
func pageURL(c *fiber.Ctx, siteURL string, page int) *string {
	u, err := url.Parse(siteURL + c.OriginalURL())
	if err != nil {
		return nil
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func pageResponse[T any](c *fiber.Ctx, siteURL string, page services.Page[T]) error {
	body := utils.PageResponseStruct[T]{
		Count:   page.Count,
		Results: page.Results,
	}
	if body.Results == nil {
		body.Results = []T{}
	}
	if page.HasNext() {
		body.Next = pageURL(c, siteURL, page.Request.Page+1)
	}
	if page.HasPrevious() {
		body.Previous = pageURL(c, siteURL, page.Request.Page-1)
	}
	return utils.SuccessResponse(c, body, fiber.StatusOK)
}

// bindJSON decodes the request body, reporting malformed JSON as a validation error.
func bindJSON(c *fiber.Ctx, target interface{}) error {
	if err := c.BodyParser(target); err != nil {
		return types.ValidationError("request.invalid_body", "Malformed request body: %v", err)
	}
	return nil
}
