package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"storefront/config"
	apimiddleware "storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/router"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/domain/entity"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/persistence/postgres"
	"storefront/internal/infra/persistence/testdb"
	"storefront/internal/infra/pubsub"
	"storefront/internal/infra/qrcode"
	"storefront/internal/infra/storage"
	"storefront/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

// testApp is the full HTTP stack over sqlite, an in-memory bucket and a noop publisher.
type testApp struct {
	t    *testing.T
	echo *echo.Echo
	cfg  *config.Config
	// createUser stores a user whose password is "pw123456".
	createUser func(user *entity.User) error
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Session = "server-test-secret"
	cfg.ApplyDefaults()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testdb.Open(t)
	txManager := postgres.NewTransactionManager(db)
	repos := postgres.NewRepositoryFactory(db)

	hasher := auth.NewBcryptHasher(cfg)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	images := storage.NewWithBucket(bucket, cfg.Storage)

	products := impl.NewProductService(impl.ProductServiceParams{
		TxManager: txManager, Repos: repos, ImageStore: images, Config: cfg, Logger: logger,
	})

	routerParams := router.RouterParams{
		UserHandler: handler.NewUserHandler(handler.UserHandlerParams{
			UserUC: impl.NewUserService(impl.UserServiceParams{
				TxManager: txManager, Repos: repos, Hasher: hasher, TokenService: tokens, Logger: logger,
			}),
			Config: cfg,
			Logger: logger,
		}),
		CartHandler: handler.NewCartHandler(handler.CartHandlerParams{
			CartUC: impl.NewCartService(impl.CartServiceParams{TxManager: txManager, Logger: logger}),
			CheckoutUC: impl.NewCheckoutService(impl.CheckoutServiceParams{
				TxManager: txManager, Publisher: pubsub.NewNoopPublisher(logger), Config: cfg, Logger: logger,
			}),
			Logger: logger,
		}),
		WishlistHandler: handler.NewWishlistHandler(handler.WishlistHandlerParams{
			WishlistUC: impl.NewWishlistService(impl.WishlistServiceParams{TxManager: txManager, Logger: logger}),
			Logger:     logger,
		}),
		ProductHandler: handler.NewProductHandler(handler.ProductHandlerParams{
			ProductUC: products, ShareCodes: qrcode.NewQRCodeService(cfg), Logger: logger,
		}),
		AdminProductHandler: handler.NewAdminProductHandler(handler.AdminProductHandlerParams{ProductUC: products, Logger: logger}),
		MediaHandler:        handler.NewMediaHandler(handler.MediaHandlerParams{Images: images}),
		AuthMiddleware:      apimiddleware.NewAuthMiddleware(tokens, cfg),
	}

	return &testApp{
		t:    t,
		echo: newEcho(cfg, logger, routerParams),
		cfg:  cfg,
		createUser: func(user *entity.User) error {
			hash, err := hasher.Hash("pw123456")
			if err != nil {
				return err
			}
			user.PasswordHash = hash

			return repos.UserRepo().Create(context.Background(), user)
		},
	}
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Details any    `json:"details"`
	} `json:"error"`
}

func (a *testApp) do(method, target string, body any, token string) (*httptest.ResponseRecorder, apiResponse) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	return a.send(req, token)
}

func (a *testApp) send(req *http.Request, token string) (*httptest.ResponseRecorder, apiResponse) {
	a.t.Helper()

	if token != "" {
		req.AddCookie(&http.Cookie{Name: a.cfg.Auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}

	return rec, resp
}

func (a *testApp) decode(resp apiResponse, into any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(resp.Data, into))
}

// login registers the email as a customer when needed and returns the cookie token.
func (a *testApp) login(email string) (string, uuid.UUID) {
	a.t.Helper()

	rec, _ := a.do(http.MethodPost, "/api/users/register", map[string]any{
		"name": "Ada", "email": email, "password": "pw123456",
	}, "")
	require.Contains(a.t, []int{http.StatusCreated, http.StatusConflict}, rec.Code)

	return a.loginExisting(email)
}

func (a *testApp) loginExisting(email string) (string, uuid.UUID) {
	a.t.Helper()

	rec, resp := a.do(http.MethodPost, "/api/users/login", map[string]any{"email": email, "password": "pw123456"}, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"_id"`
		} `json:"user"`
	}
	a.decode(resp, &out)

	cookies := rec.Result().Cookies()
	require.Len(a.t, cookies, 1)
	assert.Equal(a.t, out.Token, cookies[0].Value)
	assert.True(a.t, cookies[0].HttpOnly)

	return out.Token, out.User.ID
}

func (a *testApp) admin() string {
	a.t.Helper()

	email := uuid.NewString() + "@admin.test"
	require.NoError(a.t, a.createUser(&entity.User{Name: "Admin", Email: email, Role: entity.RoleAdmin}))
	token, _ := a.loginExisting(email)

	return token
}

func (a *testApp) createProduct(adminToken, name string, price string, files map[string]string) map[string]any {
	a.t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(a.t, w.WriteField("name", name))
	require.NoError(a.t, w.WriteField("price", price))
	require.NoError(a.t, w.WriteField("category", "Men"))
	require.NoError(a.t, w.WriteField("subCategory", "Topwear"))
	for filename, contentType := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(a.t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec, resp := a.send(req, adminToken)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var product map[string]any
	a.decode(resp, &product)

	return product
}

type cartBody struct {
	Cart []struct {
		Product struct {
			ID uuid.UUID `json:"_id"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"cart"`
}

func TestServer_Health(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_CartScenario(t *testing.T) {
	app := newTestApp(t)
	product := app.createProduct(app.admin(), "P1", "10.50", nil)
	productID := product["_id"].(string)

	token, _ := app.login("a@x.com")

	rec, resp := app.do(http.MethodPost, "/api/cart/add", map[string]any{"productId": productID, "quantity": 2}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart cartBody
	_, resp = app.do(http.MethodGet, "/api/cart", nil, token)
	app.decode(resp, &cart)
	require.Len(t, cart.Cart, 1)
	assert.Equal(t, productID, cart.Cart[0].Product.ID.String())
	assert.Equal(t, 2, cart.Cart[0].Quantity)

	rec, resp = app.do(http.MethodPut, "/api/cart/update", map[string]any{"productId": productID, "quantity": 5}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	app.decode(resp, &cart)
	require.Len(t, cart.Cart, 1)
	assert.Equal(t, 5, cart.Cart[0].Quantity)

	rec, _ = app.do(http.MethodDelete, "/api/cart/remove", map[string]any{"productId": productID}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp = app.do(http.MethodGet, "/api/cart", nil, token)
	cart = cartBody{}
	app.decode(resp, &cart)
	assert.NotNil(t, cart.Cart)
	assert.Empty(t, cart.Cart)
}

func TestServer_AddTwiceMerges(t *testing.T) {
	app := newTestApp(t)
	productID := app.createProduct(app.admin(), "P1", "3", nil)["_id"].(string)
	token, _ := app.login("b@x.com")

	for range 2 {
		rec, _ := app.do(http.MethodPost, "/api/cart/add", map[string]any{"productId": productID, "quantity": 1}, token)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var cart cartBody
	_, resp := app.do(http.MethodGet, "/api/cart", nil, token)
	app.decode(resp, &cart)
	require.Len(t, cart.Cart, 1)
	assert.Equal(t, 2, cart.Cart[0].Quantity)
}

func TestServer_CartRequiresSession(t *testing.T) {
	app := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/cart/add"},
		{http.MethodGet, "/api/cart"},
		{http.MethodPut, "/api/cart/update"},
		{http.MethodDelete, "/api/cart/remove"},
		{http.MethodDelete, "/api/cart/clear"},
		{http.MethodPost, "/api/wishlist/add"},
		{http.MethodGet, "/api/wishlist"},
		{http.MethodGet, "/api/users/me"},
	} {
		rec, resp := app.do(route.method, route.path, map[string]any{"productId": uuid.NewString()}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
		require.NotNil(t, resp.Error, route.path)
		assert.Equal(t, "UNAUTHENTICATED", resp.Error.Code)
	}
}

func TestServer_RejectsInvalidBodies(t *testing.T) {
	app := newTestApp(t)
	productID := app.createProduct(app.admin(), "P1", "3", nil)["_id"].(string)
	token, _ := app.login("body@x.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   map[string]any
		token  string
	}{
		{name: "cart add without product", method: http.MethodPost, path: "/api/cart/add", body: map[string]any{"quantity": 1}, token: token},
		{name: "cart add negative quantity", method: http.MethodPost, path: "/api/cart/add", body: map[string]any{"productId": productID, "quantity": -1}, token: token},
		{name: "cart add over the cap", method: http.MethodPost, path: "/api/cart/add", body: map[string]any{"productId": productID, "quantity": 1000}, token: token},
		{name: "cart update over the cap", method: http.MethodPut, path: "/api/cart/update", body: map[string]any{"productId": productID, "quantity": 1 << 40}, token: token},
		{name: "cart remove without product", method: http.MethodDelete, path: "/api/cart/remove", body: map[string]any{}, token: token},
		{name: "wishlist add without product", method: http.MethodPost, path: "/api/wishlist/add", body: map[string]any{}, token: token},
		{name: "register bad email", method: http.MethodPost, path: "/api/users/register", body: map[string]any{"name": "Ada", "email": "not-an-email", "password": "pw123456"}},
		{name: "register short password", method: http.MethodPost, path: "/api/users/register", body: map[string]any{"name": "Ada", "email": "short@x.com", "password": "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := app.do(tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
		})
	}

	rec, resp := app.do(http.MethodGet, "/api/cart", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Cart []any `json:"cart"`
	}
	app.decode(resp, &cart)
	assert.Empty(t, cart.Cart)
}

func TestServer_ForeignCartForbidden(t *testing.T) {
	app := newTestApp(t)
	productID := app.createProduct(app.admin(), "P1", "3", nil)["_id"].(string)
	alice, _ := app.login("alice@x.com")
	_, bobID := app.login("bob@x.com")

	rec, _ := app.do(http.MethodPost, "/api/cart/add", map[string]any{"userId": bobID, "productId": productID}, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(http.MethodGet, "/api/cart/"+bobID.String(), nil, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(http.MethodDelete, "/api/cart/clear/"+bobID.String(), nil, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(http.MethodGet, "/api/cart/not-a-uuid", nil, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_VerifyAndLogout(t *testing.T) {
	app := newTestApp(t)
	token, userID := app.login("c@x.com")

	rec, resp := app.do(http.MethodGet, "/api/users/verify", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var verified struct {
		LoggedIn bool `json:"loggedIn"`
		User     struct {
			ID uuid.UUID `json:"_id"`
		} `json:"user"`
	}
	app.decode(resp, &verified)
	assert.True(t, verified.LoggedIn)
	assert.Equal(t, userID, verified.User.ID)

	rec, resp = app.do(http.MethodGet, "/api/users/verify", nil, "forged.token.value")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	verified.LoggedIn = true
	app.decode(resp, &verified)
	assert.False(t, verified.LoggedIn)

	rec, _ = app.do(http.MethodPost, "/api/users/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)

	rec, _ = app.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code, "tokens stay valid until expiry")
}

func TestServer_LoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.login("d@x.com")

	rec, resp := app.do(http.MethodPost, "/api/users/login", map[string]any{"email": "d@x.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	unknownRec, unknownResp := app.do(http.MethodPost, "/api/users/login", map[string]any{"email": "nobody@x.com", "password": "pw123456"}, "")
	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, resp.Error.Code, unknownResp.Error.Code)

	rec, resp = app.do(http.MethodPost, "/api/users/login", map[string]any{"email": "d@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	rec, _ = app.do(http.MethodPost, "/api/users/register", map[string]any{"name": "Ada", "email": "d@x.com", "password": "pw123456"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_WishlistIdempotent(t *testing.T) {
	app := newTestApp(t)
	productID := app.createProduct(app.admin(), "P1", "3", nil)["_id"].(string)
	token, _ := app.login("e@x.com")

	var out struct {
		Wishlist       []map[string]any `json:"wishlist"`
		AlreadyPresent bool             `json:"alreadyPresent"`
	}

	_, resp := app.do(http.MethodPost, "/api/wishlist/add", map[string]any{"productId": productID}, token)
	app.decode(resp, &out)
	assert.False(t, out.AlreadyPresent)

	_, resp = app.do(http.MethodPost, "/api/wishlist/add", map[string]any{"productId": productID}, token)
	app.decode(resp, &out)
	assert.True(t, out.AlreadyPresent)
	assert.Len(t, out.Wishlist, 1)

	for range 2 {
		rec, resp := app.do(http.MethodDelete, "/api/wishlist/remove", map[string]any{"productId": productID}, token)
		require.Equal(t, http.StatusOK, rec.Code)
		out.Wishlist = nil
		app.decode(resp, &out)
		assert.NotNil(t, out.Wishlist)
		assert.Empty(t, out.Wishlist)
	}
}

func TestServer_Checkout(t *testing.T) {
	app := newTestApp(t)
	productID := app.createProduct(app.admin(), "P1", "100", nil)["_id"].(string)
	token, _ := app.login("f@x.com")

	rec, resp := app.do(http.MethodPost, "/api/cart/checkout", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CART_EMPTY", resp.Error.Code)

	app.do(http.MethodPost, "/api/cart/add", map[string]any{"productId": productID, "quantity": 3}, token)

	rec, resp = app.do(http.MethodPost, "/api/cart/checkout", nil, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt entity.Receipt
	app.decode(resp, &receipt)
	assert.InDelta(t, 300.0, receipt.Subtotal, 1e-9)
	assert.InDelta(t, 54.0, receipt.Tax, 1e-9)
	assert.InDelta(t, 354.0, receipt.Total, 1e-9)

	var cart cartBody
	_, resp = app.do(http.MethodGet, "/api/cart", nil, token)
	app.decode(resp, &cart)
	assert.Empty(t, cart.Cart)
}

func TestServer_AdminProducts(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.admin()
	customer, _ := app.login("g@x.com")

	rec, _ := app.do(http.MethodDelete, "/api/admin/products/"+uuid.NewString(), nil, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	product := app.createProduct(adminToken, "Shirt", "25", map[string]string{"front.png": "image/png"})
	productID := product["_id"].(string)
	images := product["images"].([]any)
	require.Len(t, images, 1)
	image := images[0].(map[string]any)
	imageURL := image["url"].(string)
	require.True(t, strings.HasPrefix(imageURL, "/media/products/"), imageURL)

	rec, _ = app.do(http.MethodGet, imageURL, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "image-bytes", rec.Body.String())

	rec, resp := app.do(http.MethodPut, "/api/admin/products/"+productID, map[string]any{"price": 30}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated entity.Product
	app.decode(resp, &updated)
	assert.Equal(t, "Shirt", updated.Name)
	assert.InDelta(t, 30.0, updated.Price, 1e-9)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("deleteImageIds", `["`+image["publicId"].(string)+`"]`))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/"+productID+"/images", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec, resp = app.send(req, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app.decode(resp, &updated)
	assert.Empty(t, updated.Images)

	rec, _ = app.do(http.MethodGet, imageURL, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = app.do(http.MethodGet, "/api/products?category=MEN", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Products []entity.Product `json:"products"`
	}
	app.decode(resp, &listing)
	require.Len(t, listing.Products, 1)

	rec, _ = app.do(http.MethodGet, "/api/products/"+productID+"/qr", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec, _ = app.do(http.MethodDelete, "/api/admin/products/"+productID, nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(http.MethodGet, "/api/products/"+productID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = app.do(http.MethodGet, "/api/products/"+productID+"/qr", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AdminRejectsBadUploads(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.admin()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Shirt"))
	require.NoError(t, w.WriteField("price", "0"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	rec, resp := app.send(req, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	body.Reset()
	w = multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Shirt"))
	require.NoError(t, w.WriteField("price", "5"))
	part, err := w.CreateFormFile("images", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/admin/products", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	rec, resp = app.send(req, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}
