package handlers

import (
	"context"
	"net/http"

	"labquote/catalog"
	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// catalogQuery reads the shared list filters. group is the kind-specific
// grouping parameter (category, disease_area or panel).
func catalogQuery(c *gin.Context, group string) catalog.Query {
	return catalog.Query{
		Modality: c.Query("modality"),
		GLP:      queryBool(c, "glp"),
		Group:    c.Query(group),
		Text:     c.Query("q"),
	}
}

func listCatalog[T any](list func(context.Context, catalog.Query) ([]T, error), group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		items, err := list(ctx, catalogQuery(c, group))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func getCatalog[T any](get func(context.Context, string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		item, err := get(ctx, c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func saveCatalog[T any](save func(context.Context, services.Actor, T) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		item, err := save(ctx, middleware.ActorFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// ListToxicityTests lists the toxicity catalog
// @Summary List toxicity tests
// @Description An item with no modalities applies to every modality.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param modality query string false "Modality"
// @Param glp query bool false "GLP only / non-GLP only"
// @Param category query string false "Category"
// @Param q query string false "Search text"
// @Success 200 {array} models.ToxicityTest
// @Router /api/catalog/toxicity [get]
func ListToxicityTests(svc *services.CatalogService) gin.HandlerFunc {
	return listCatalog(svc.ListToxicity, "category")
}

// GetToxicityTest returns one toxicity test
// @Summary Get toxicity test
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Catalog code"
// @Success 200 {object} models.ToxicityTest
// @Failure 404 {object} models.ErrorResponse
// @Router /api/catalog/toxicity/{code} [get]
func GetToxicityTest(svc *services.CatalogService) gin.HandlerFunc {
	return getCatalog(svc.GetToxicity)
}

// SaveToxicityTest creates or replaces a toxicity test by code
// @Summary Save toxicity test
// @Description Admin only. Upserts by code.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ToxicityTest true "Toxicity test"
// @Success 200 {object} models.ToxicityTest
// @Failure 400 {object} models.ErrorResponse
// @Router /api/catalog/toxicity [put]
func SaveToxicityTest(svc *services.CatalogService) gin.HandlerFunc {
	return saveCatalog[models.ToxicityTest](svc.SaveToxicity)
}

// ListEfficacyModels lists the efficacy catalog
// @Summary List efficacy models
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param modality query string false "Modality"
// @Param disease_area query string false "Disease area"
// @Param q query string false "Search text"
// @Success 200 {array} models.EfficacyModel
// @Router /api/catalog/efficacy [get]
func ListEfficacyModels(svc *services.CatalogService) gin.HandlerFunc {
	return listCatalog(svc.ListEfficacy, "disease_area")
}

// GetEfficacyModel returns one efficacy model
// @Summary Get efficacy model
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Catalog code"
// @Success 200 {object} models.EfficacyModel
// @Failure 404 {object} models.ErrorResponse
// @Router /api/catalog/efficacy/{code} [get]
func GetEfficacyModel(svc *services.CatalogService) gin.HandlerFunc {
	return getCatalog(svc.GetEfficacy)
}

// SaveEfficacyModel creates or replaces an efficacy model by code
// @Summary Save efficacy model
// @Description Admin only. Upserts by code.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EfficacyModel true "Efficacy model"
// @Success 200 {object} models.EfficacyModel
// @Failure 400 {object} models.ErrorResponse
// @Router /api/catalog/efficacy [put]
func SaveEfficacyModel(svc *services.CatalogService) gin.HandlerFunc {
	return saveCatalog[models.EfficacyModel](svc.SaveEfficacy)
}

// ListClinicalPathologyTests lists the clinical pathology catalog
// @Summary List clinical pathology tests
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param panel query string false "Panel"
// @Param q query string false "Search text"
// @Success 200 {array} models.ClinicalPathologyTest
// @Router /api/catalog/clinical-pathology [get]
func ListClinicalPathologyTests(svc *services.CatalogService) gin.HandlerFunc {
	return listCatalog(svc.ListClinicalPathology, "panel")
}

// GetClinicalPathologyTest returns one clinical pathology test
// @Summary Get clinical pathology test
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Catalog code"
// @Success 200 {object} models.ClinicalPathologyTest
// @Failure 404 {object} models.ErrorResponse
// @Router /api/catalog/clinical-pathology/{code} [get]
func GetClinicalPathologyTest(svc *services.CatalogService) gin.HandlerFunc {
	return getCatalog(svc.GetClinicalPathology)
}

// SaveClinicalPathologyTest creates or replaces a clinical pathology test by code
// @Summary Save clinical pathology test
// @Description Admin only. Upserts by code.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ClinicalPathologyTest true "Clinical pathology test"
// @Success 200 {object} models.ClinicalPathologyTest
// @Failure 400 {object} models.ErrorResponse
// @Router /api/catalog/clinical-pathology [put]
func SaveClinicalPathologyTest(svc *services.CatalogService) gin.HandlerFunc {
	return saveCatalog[models.ClinicalPathologyTest](svc.SaveClinicalPathology)
}

// DeleteCatalogItem removes a catalog entry of any kind
// @Summary Delete catalog item
// @Description Admin only. Existing quotations keep their priced copies.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Catalog code"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/catalog/items/{code} [delete]
func DeleteCatalogItem(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := svc.Delete(ctx, middleware.ActorFrom(c), c.Param("code")); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Catalog item")
	}
}
