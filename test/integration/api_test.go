// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

type apiResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
	Exists  bool                `json:"exists"`
}

type authData struct {
	User struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		UserType string `json:"user_type"`
		Company  *struct {
			CompanyName string `json:"company_name"`
			SirenNumber string `json:"siren_number"`
		} `json:"company"`
	} `json:"user"`
	Token string `json:"token"`
}

func call(method, path, token string, body any) (int, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(env.ctx, method, env.server.URL+path, reader)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	var out apiResponse
	Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
	return resp.StatusCode, out
}

func authOf(resp apiResponse) authData {
	var data authData
	Expect(json.Unmarshal(resp.Data, &data)).To(Succeed())
	return data
}

var janeExhibitor = map[string]string{
	"firstName":    "Jane",
	"lastName":     "Doe",
	"email":        "jane@x.com",
	"password":     "Abcdefgh1!",
	"user_type":    "exposant",
	"company_name": "Acme",
	"siren_number": "123456789",
}

var _ = Describe("Account API", func() {
	BeforeEach(func() {
		env.truncate()
	})

	Describe("registration and login", func() {
		It("registers an exhibitor, rejects the duplicate and logs in", func() {
			status, resp := call(http.MethodPost, "/register", "", janeExhibitor)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(resp.Success).To(BeTrue())
			registered := authOf(resp)
			Expect(registered.Token).NotTo(BeEmpty())
			Expect(registered.User.UserType).To(Equal("exposant"))
			Expect(registered.User.Company).NotTo(BeNil())
			Expect(registered.User.Company.SirenNumber).To(Equal("123456789"))

			status, resp = call(http.MethodPost, "/register", "", janeExhibitor)
			Expect(status).To(Equal(http.StatusUnprocessableEntity))
			Expect(resp.Errors).To(HaveKey("email"))

			status, resp = call(http.MethodPost, "/login", "", map[string]string{
				"email": "Jane@X.com", "password": "Abcdefgh1!",
			})
			Expect(status).To(Equal(http.StatusOK))
			loggedIn := authOf(resp)
			Expect(loggedIn.User.ID).To(Equal(registered.User.ID))
			Expect(loggedIn.User.Company.CompanyName).To(Equal("Acme"))

			status, _ = call(http.MethodPost, "/login", "", map[string]string{
				"email": "jane@x.com", "password": "wrong",
			})
			Expect(status).To(Equal(http.StatusUnauthorized))
		})

		It("answers unknown emails exactly like wrong passwords", func() {
			call(http.MethodPost, "/register", "", janeExhibitor)

			_, wrongPassword := call(http.MethodPost, "/login", "", map[string]string{
				"email": "jane@x.com", "password": "Wrong-pass-1",
			})
			_, unknownEmail := call(http.MethodPost, "/login", "", map[string]string{
				"email": "ghost@x.com", "password": "Wrong-pass-1",
			})
			Expect(unknownEmail).To(Equal(wrongPassword))
		})

		It("registers a visitor without a company", func() {
			status, resp := call(http.MethodPost, "/register", "", map[string]string{
				"firstName": "Vic", "lastName": "Tor", "email": "vic@x.com",
				"password": "Abcdefgh1!", "user_type": "visiteur",
				"company_name": "ignored", "siren_number": "987654321",
			})
			Expect(status).To(Equal(http.StatusCreated))
			Expect(authOf(resp).User.Company).To(BeNil())

			var companies int
			Expect(env.pool.QueryRow(env.ctx, `SELECT count(*) FROM companies`).Scan(&companies)).To(Succeed())
			Expect(companies).To(BeZero())
		})

		It("rejects a SIREN already used by another exhibitor", func() {
			call(http.MethodPost, "/register", "", janeExhibitor)

			other := map[string]string{}
			for k, v := range janeExhibitor {
				other[k] = v
			}
			other["email"] = "john@x.com"

			status, resp := call(http.MethodPost, "/register", "", other)
			Expect(status).To(Equal(http.StatusUnprocessableEntity))
			Expect(resp.Errors).To(HaveKey("siren_number"))
		})
	})

	Describe("check-email", func() {
		It("reports whether an email is in use", func() {
			_, resp := call(http.MethodPost, "/check-email", "", map[string]string{"email": "jane@x.com"})
			Expect(resp.Exists).To(BeFalse())

			call(http.MethodPost, "/register", "", janeExhibitor)

			status, resp := call(http.MethodPost, "/check-email", "", map[string]string{"email": "JANE@x.com"})
			Expect(status).To(Equal(http.StatusOK))
			Expect(resp.Exists).To(BeTrue())
		})
	})

	Describe("sessions", func() {
		It("stops authenticating a token after logout", func() {
			_, resp := call(http.MethodPost, "/register", "", janeExhibitor)
			token := authOf(resp).Token

			status, resp := call(http.MethodGet, "/user", token, nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(string(resp.Data)).To(ContainSubstring(`"company_name":"Acme"`))

			status, _ = call(http.MethodPost, "/logout", token, nil)
			Expect(status).To(Equal(http.StatusOK))

			status, _ = call(http.MethodGet, "/user", token, nil)
			Expect(status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("profile and documents", func() {
		It("updates the profile and keeps documents private", func() {
			_, resp := call(http.MethodPost, "/register", "", janeExhibitor)
			jane := authOf(resp)

			status, resp := call(http.MethodPut, "/profile", jane.Token, map[string]string{"company_name": "Acme SAS"})
			Expect(status).To(Equal(http.StatusOK))
			Expect(string(resp.Data)).To(ContainSubstring("Acme SAS"))

			status, _ = call(http.MethodPost, "/documents", jane.Token, map[string]string{
				"name": "Kbis.pdf", "url": "https://files.example/kbis.pdf",
			})
			Expect(status).To(Equal(http.StatusCreated))

			status, resp = call(http.MethodGet, "/users/"+jane.User.ID+"/documents", jane.Token, nil)
			Expect(status).To(Equal(http.StatusOK))
			var docs []map[string]any
			Expect(json.Unmarshal(resp.Data, &docs)).To(Succeed())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0]["name"]).To(Equal("Kbis.pdf"))

			_, resp = call(http.MethodPost, "/register", "", map[string]string{
				"firstName": "Vic", "lastName": "Tor", "email": "vic@x.com",
				"password": "Abcdefgh1!", "user_type": "visiteur",
			})
			vic := authOf(resp)

			status, _ = call(http.MethodGet, "/users/"+jane.User.ID+"/documents", vic.Token, nil)
			Expect(status).To(Equal(http.StatusForbidden))
		})
	})
})
